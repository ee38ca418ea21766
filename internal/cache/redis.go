package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/emrgen/docgen/internal/compress"
	"github.com/emrgen/docgen/internal/model"
	redis "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	templateIndexSet = "template:names"
	DefaultTTL       = time.Hour
)

func templateKey(name string) string {
	return "template:" + name
}

var _ TemplateCache = (*RedisTemplateCache)(nil)

type RedisTemplateCache struct {
	client  *redis.Client
	encoder compress.Compress
	ttl     time.Duration
}

func NewRedisTemplateCache(client *redis.Client, encoder compress.Compress, ttl time.Duration) *RedisTemplateCache {
	if encoder == nil {
		encoder = compress.NewNop()
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	return &RedisTemplateCache{client: client, encoder: encoder, ttl: ttl}
}

func (r *RedisTemplateCache) GetTemplate(ctx context.Context, name string) (*model.Template, error) {
	res := r.client.Get(ctx, templateKey(name))
	if res.Err() != nil {
		if errors.Is(res.Err(), redis.Nil) {
			return nil, nil
		}
		return nil, res.Err()
	}

	buf, err := res.Bytes()
	if err != nil {
		return nil, err
	}

	data, err := r.encoder.Decode(buf)
	if err != nil {
		// a codec change leaves undecodable entries behind, drop them
		logrus.Warnf("evicting undecodable template %s: %v", name, err)
		_ = r.DeleteTemplate(ctx, name)
		return nil, nil
	}

	tmpl := &model.Template{}
	if err := json.Unmarshal(data, tmpl); err != nil {
		return nil, err
	}

	return tmpl, nil
}

func (r *RedisTemplateCache) SetTemplate(ctx context.Context, tmpl *model.Template) error {
	marshal, err := tmpl.MarshalBinary()
	if err != nil {
		return err
	}

	data, err := r.encoder.Encode(marshal)
	if err != nil {
		return err
	}

	_, err = r.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		if err := p.Set(ctx, templateKey(tmpl.Name), data, r.ttl).Err(); err != nil {
			return err
		}

		return p.SAdd(ctx, templateIndexSet, tmpl.Name).Err()
	})

	return err
}

func (r *RedisTemplateCache) DeleteTemplate(ctx context.Context, name string) error {
	_, err := r.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		if err := p.Del(ctx, templateKey(name)).Err(); err != nil {
			return err
		}

		return p.SRem(ctx, templateIndexSet, name).Err()
	})

	return err
}

// CachedNames lists the names of templates stored by SetTemplate. Entries
// may have expired since.
func (r *RedisTemplateCache) CachedNames(ctx context.Context) ([]string, error) {
	return r.client.SMembers(ctx, templateIndexSet).Result()
}
