package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"go-habit-engine/internal/core/cache"
	"go-habit-engine/internal/domain"
)

const userCacheTTL = 5 * time.Minute

// UserRepo 聚合根落库。cache 可为 nil（测试/无 redis 环境直接打库）。
type UserRepo struct {
	db    *gorm.DB
	cache *cache.Cache
}

func NewUserRepo(db *gorm.DB, c *cache.Cache) *UserRepo {
	return &UserRepo{db: db, cache: c}
}

func userKey(id string) string { return "user:" + id }

func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *UserRepo) FindByID(ctx context.Context, id string) (*domain.User, error) {
	if r.cache == nil {
		return r.findByID(ctx, id)
	}
	return cache.GetOrLoadJSON(r.cache, ctx, userKey(id), userCacheTTL,
		func(ctx context.Context) (*domain.User, error) {
			return r.findByID(ctx, id)
		})
}

func (r *UserRepo) findByID(ctx context.Context, id string) (*domain.User, error) {
	var u domain.User
	err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// FindByToken x-api-user / x-api-key 这一对的鉴权查询
func (r *UserRepo) FindByToken(ctx context.Context, id, token string) (*domain.User, error) {
	u, err := r.FindByID(ctx, id)
	if err != nil || u == nil {
		return nil, err
	}
	if token == "" || u.APIToken != token {
		return nil, nil
	}
	return u, nil
}

func (r *UserRepo) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	var u domain.User
	err := r.db.WithContext(ctx).First(&u, "username = ?", username).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) List(ctx context.Context, offset, limit int) ([]domain.User, int64, error) {
	tx := r.db.WithContext(ctx).Model(&domain.User{})
	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var users []domain.User
	if err := tx.Offset(offset).Limit(limit).Order("created_at desc").Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// 顶层属性名 → 列名。Save 只写 touched 命中的列。
var attrColumns = map[string]string{
	"stats":        "stats",
	"habitIds":     "habit_ids",
	"dailyIds":     "daily_ids",
	"todoIds":      "todo_ids",
	"rewardIds":    "reward_ids",
	"tasks":        "tasks",
	"items":        "items",
	"preferences":  "preferences",
	"flags":        "flags",
	"achievements": "achievements",
	"history":      "history",
	"tags":         "tags",
	"profile":      "profile",
	"lastCron":     "last_cron",
	"balance":      "balance",
	"auth":         "auth",
	"apiToken":     "api_token",
	"username":     "username",
}

// Save 落库并失效缓存；touched 为空时整行覆盖
func (r *UserRepo) Save(ctx context.Context, u *domain.User, touched domain.Touched) error {
	if err := r.save(ctx, u, touched); err != nil {
		return err
	}
	if r.cache != nil {
		_ = r.cache.RDB.Del(ctx, userKey(u.ID)).Err()
	}
	return nil
}

func (r *UserRepo) save(ctx context.Context, u *domain.User, touched domain.Touched) error {
	if len(touched) == 0 {
		return r.db.WithContext(ctx).Save(u).Error
	}
	cols := make([]string, 0, len(touched))
	for _, f := range touched.Fields() {
		if col, ok := attrColumns[f]; ok {
			cols = append(cols, col)
		}
	}
	if len(cols) == 0 {
		return r.db.WithContext(ctx).Save(u).Error
	}
	return r.db.WithContext(ctx).Model(u).Select(cols).Updates(u).Error
}

func (r *UserRepo) SoftDelete(ctx context.Context, id string) error {
	if err := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.User{}).Error; err != nil {
		return err
	}
	if r.cache != nil {
		_ = r.cache.RDB.Del(ctx, userKey(id)).Err()
	}
	return nil
}
