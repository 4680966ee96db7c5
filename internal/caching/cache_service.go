package caching

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"visionm/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type CacheService interface {
	// Profile caching
	GetProfile(ctx context.Context, profileID uuid.UUID) (*models.Profile, error)
	SetProfile(ctx context.Context, profile *models.Profile, ttl time.Duration) error
	DeleteProfile(ctx context.Context, profileID uuid.UUID) error

	// Company caching
	GetCompany(ctx context.Context, companyID uuid.UUID) (*models.Company, error)
	SetCompany(ctx context.Context, company *models.Company, ttl time.Duration) error

	// Dataset status caching, absorbs the fixed-interval client polling
	GetDataset(ctx context.Context, datasetID uuid.UUID) (*models.Dataset, error)
	SetDataset(ctx context.Context, dataset *models.Dataset, ttl time.Duration) error

	// Workspace analytics caching
	GetWorkspaceAnalytics(ctx context.Context, companyID uuid.UUID) (map[string]interface{}, error)
	SetWorkspaceAnalytics(ctx context.Context, companyID uuid.UUID, analytics map[string]interface{}, ttl time.Duration) error

	// Rate limiting
	IsRateLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
	IncrementRateLimit(ctx context.Context, key string, window time.Duration) error

	// Generic string operations for token management
	SetString(ctx context.Context, key string, value string, ttl time.Duration) error
	GetString(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error

	Ping(ctx context.Context) error
}

type redisCacheService struct {
	client *redis.Client
}

func NewRedisCacheService(addr, password string, db int) CacheService {
	// Accept redis://host:port URLs as well as bare host:port
	parsedAddr := addr
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		if hostPort := strings.TrimPrefix(strings.TrimPrefix(addr, "redis://"), "rediss://"); hostPort != addr {
			parsedAddr = hostPort
		}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     parsedAddr,
		Password: password,
		DB:       db,
	})

	if pingErr := client.Ping(context.Background()).Err(); pingErr != nil {
		log.Printf("WARN: Redis ping failed on initialization: %v (address: %s)", pingErr, parsedAddr)
	}

	return &redisCacheService{client: client}
}

func (r *redisCacheService) GetProfile(ctx context.Context, profileID uuid.UUID) (*models.Profile, error) {
	key := fmt.Sprintf("visionm:profile:%s", profileID.String())
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // cache miss
		}
		return nil, err
	}

	var profile models.Profile
	if err := json.Unmarshal(data, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *redisCacheService) SetProfile(ctx context.Context, profile *models.Profile, ttl time.Duration) error {
	key := fmt.Sprintf("visionm:profile:%s", profile.ID.String())
	data, err := json.Marshal(profile)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, data, ttl).Err()
}

func (r *redisCacheService) DeleteProfile(ctx context.Context, profileID uuid.UUID) error {
	key := fmt.Sprintf("visionm:profile:%s", profileID.String())
	return r.client.Del(ctx, key).Err()
}

func (r *redisCacheService) GetCompany(ctx context.Context, companyID uuid.UUID) (*models.Company, error) {
	key := fmt.Sprintf("visionm:company:%s", companyID.String())
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var company models.Company
	if err := json.Unmarshal(data, &company); err != nil {
		return nil, err
	}
	return &company, nil
}

func (r *redisCacheService) SetCompany(ctx context.Context, company *models.Company, ttl time.Duration) error {
	key := fmt.Sprintf("visionm:company:%s", company.ID.String())
	data, err := json.Marshal(company)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, data, ttl).Err()
}

func (r *redisCacheService) GetDataset(ctx context.Context, datasetID uuid.UUID) (*models.Dataset, error) {
	key := fmt.Sprintf("visionm:dataset:%s", datasetID.String())
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var dataset models.Dataset
	if err := json.Unmarshal(data, &dataset); err != nil {
		return nil, err
	}
	return &dataset, nil
}

func (r *redisCacheService) SetDataset(ctx context.Context, dataset *models.Dataset, ttl time.Duration) error {
	key := fmt.Sprintf("visionm:dataset:%s", dataset.ID.String())
	data, err := json.Marshal(dataset)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, data, ttl).Err()
}

func (r *redisCacheService) GetWorkspaceAnalytics(ctx context.Context, companyID uuid.UUID) (map[string]interface{}, error) {
	key := fmt.Sprintf("visionm:analytics:%s", companyID.String())
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var analytics map[string]interface{}
	if err := json.Unmarshal(data, &analytics); err != nil {
		return nil, err
	}
	return analytics, nil
}

func (r *redisCacheService) SetWorkspaceAnalytics(ctx context.Context, companyID uuid.UUID, analytics map[string]interface{}, ttl time.Duration) error {
	key := fmt.Sprintf("visionm:analytics:%s", companyID.String())
	data, err := json.Marshal(analytics)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, data, ttl).Err()
}

func (r *redisCacheService) IsRateLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	fullKey := fmt.Sprintf("visionm:ratelimit:%s", key)
	count, err := r.client.Get(ctx, fullKey).Int()
	if err != nil {
		if err == redis.Nil {
			return false, nil
		}
		return false, err
	}
	return count >= limit, nil
}

func (r *redisCacheService) IncrementRateLimit(ctx context.Context, key string, window time.Duration) error {
	fullKey := fmt.Sprintf("visionm:ratelimit:%s", key)
	pipe := r.client.TxPipeline()
	pipe.Incr(ctx, fullKey)
	pipe.Expire(ctx, fullKey, window)
	_, err := pipe.Exec(ctx)
	return err
}

func (r *redisCacheService) SetString(ctx context.Context, key string, value string, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}

func (r *redisCacheService) GetString(ctx context.Context, key string) (string, error) {
	return r.client.Get(ctx, key).Result()
}

func (r *redisCacheService) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}

func (r *redisCacheService) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
