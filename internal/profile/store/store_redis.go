package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"auditlink/internal/profile/models"
	id "auditlink/pkg/domain"
	"auditlink/pkg/platform/sentinel"
)

const (
	profileKeyPrefix = "auditlink:profile:"
	roleIndexPrefix  = "auditlink:profiles:role:"

	maxWatchRetries = 5
)

// RedisStore keeps each profile as a JSON string plus one set per role
// indexing principals. Writes WATCH the profile key so the role index never
// drifts from the profile under concurrent saves.
type RedisStore struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func profileKey(p id.Principal) string { return profileKeyPrefix + p.String() }

func roleKey(r models.Role) string { return roleIndexPrefix + r.String() }

func (s *RedisStore) Save(ctx context.Context, p *models.Profile) error {
	payload, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}
	key := profileKey(p.Principal)
	return s.watch(ctx, key, func(tx *redis.Tx) error {
		previous, err := readProfile(ctx, tx, key)
		if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			if previous != nil && previous.Role != p.Role {
				pipe.SRem(ctx, roleKey(previous.Role), p.Principal.String())
			}
			pipe.Set(ctx, key, payload, 0)
			pipe.SAdd(ctx, roleKey(p.Role), p.Principal.String())
			return nil
		})
		return err
	})
}

func (s *RedisStore) FindByPrincipal(ctx context.Context, principal id.Principal) (*models.Profile, error) {
	return readProfile(ctx, s.client, profileKey(principal))
}

func (s *RedisStore) Delete(ctx context.Context, principal id.Principal) error {
	key := profileKey(principal)
	return s.watch(ctx, key, func(tx *redis.Tx) error {
		previous, err := readProfile(ctx, tx, key)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, key)
			pipe.SRem(ctx, roleKey(previous.Role), principal.String())
			return nil
		})
		return err
	})
}

// ListByRole resolves the role index with one MGET. Index members whose
// profile disappeared are skipped.
func (s *RedisStore) ListByRole(ctx context.Context, role models.Role) ([]*models.Profile, error) {
	members, err := s.client.SMembers(ctx, roleKey(role)).Result()
	if err != nil {
		return nil, fmt.Errorf("read role index: %w", err)
	}
	out := make([]*models.Profile, 0, len(members))
	if len(members) == 0 {
		return out, nil
	}

	keys := make([]string, len(members))
	for i, m := range members {
		keys[i] = profileKeyPrefix + m
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("read profiles: %w", err)
	}
	for _, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		var p models.Profile
		if err := json.Unmarshal([]byte(raw), &p); err != nil {
			return nil, fmt.Errorf("decode profile: %w", err)
		}
		if p.Role == role {
			out = append(out, &p)
		}
	}
	sortProfiles(out)
	return out, nil
}

// watch runs fn under WATCH key, retrying when another client touched the
// key between the read and EXEC.
func (s *RedisStore) watch(ctx context.Context, key string, fn func(tx *redis.Tx) error) error {
	for range maxWatchRetries {
		err := s.client.Watch(ctx, fn, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return fmt.Errorf("profile %s: %w", key, redis.TxFailedErr)
}

// getter is satisfied by both *redis.Client and *redis.Tx.
type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func readProfile(ctx context.Context, c getter, key string) (*models.Profile, error) {
	raw, err := c.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read profile: %w", err)
	}
	var p models.Profile
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	return &p, nil
}
