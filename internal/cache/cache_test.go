package cache

import (
	"bytes"
	"context"
	"log"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/roomai/agora/config"
)

func TestKeyIsHexSHA256(t *testing.T) {
	got := Key("hello")
	want := "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"
	if got != want {
		t.Fatalf("Key(hello) = %s, want %s", got, want)
	}
}

func TestKeyIsCaseSensitive(t *testing.T) {
	if Key("Hello") == Key("hello") {
		t.Fatalf("expected distinct keys for distinct prompts")
	}
	if Key("hello") != Key("hello") {
		t.Fatalf("expected stable keys")
	}
}

func TestMemoryCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()

	if _, found, err := c.Get(ctx, "missing"); err != nil || found {
		t.Fatalf("expected clean miss, got found=%v err=%v", found, err)
	}

	if err := c.Put(ctx, "k", []byte(`{"a":1}`)); err != nil {
		t.Fatalf("Put: %v", err)
	}
	v, found, err := c.Get(ctx, "k")
	if err != nil || !found {
		t.Fatalf("expected hit, got found=%v err=%v", found, err)
	}
	if !bytes.Equal(v, []byte(`{"a":1}`)) {
		t.Fatalf("unexpected value %s", v)
	}

	// a fresh Put overwrites
	if err := c.Put(ctx, "k", []byte(`{"a":2}`)); err != nil {
		t.Fatalf("Put: %v", err)
	}
	v, _, _ = c.Get(ctx, "k")
	if !bytes.Equal(v, []byte(`{"a":2}`)) {
		t.Fatalf("expected overwrite, got %s", v)
	}
}

func TestMemoryCacheCopiesValues(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()
	src := []byte("original")
	c.Put(ctx, "k", src)
	src[0] = 'X'

	v, _, _ := c.Get(ctx, "k")
	if string(v) != "original" {
		t.Fatalf("stored value aliases caller buffer: %s", v)
	}
	v[0] = 'Y'
	v2, _, _ := c.Get(ctx, "k")
	if string(v2) != "original" {
		t.Fatalf("returned value aliases stored buffer: %s", v2)
	}
}

func TestRedisCacheRoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	c := NewRedisCacheFromClient(client)
	ctx := context.Background()

	if _, found, err := c.Get(ctx, "missing"); err != nil || found {
		t.Fatalf("expected clean miss, got found=%v err=%v", found, err)
	}
	if err := c.Put(ctx, "abc", []byte(`{"x":true}`)); err != nil {
		t.Fatalf("Put: %v", err)
	}
	v, found, err := c.Get(ctx, "abc")
	if err != nil || !found {
		t.Fatalf("expected hit, got found=%v err=%v", found, err)
	}
	if string(v) != `{"x":true}` {
		t.Fatalf("unexpected value %s", v)
	}

	// entries live under a service prefix and never expire
	stored, err := mr.Get("agora:debate:abc")
	if err != nil {
		t.Fatalf("expected prefixed key in redis: %v", err)
	}
	if stored != `{"x":true}` {
		t.Fatalf("unexpected stored value %s", stored)
	}
	if mr.TTL("agora:debate:abc") != 0 {
		t.Fatalf("expected no TTL")
	}
}

func TestPostgresCacheGet(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()
	c := NewPostgresCacheFromDB(db)
	ctx := context.Background()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT result FROM debate_cache WHERE prompt_hash = $1`)).
		WithArgs("hash1").
		WillReturnRows(sqlmock.NewRows([]string{"result"}).AddRow([]byte(`{"ok":1}`)))

	v, found, err := c.Get(ctx, "hash1")
	if err != nil || !found {
		t.Fatalf("expected hit, got found=%v err=%v", found, err)
	}
	if string(v) != `{"ok":1}` {
		t.Fatalf("unexpected value %s", v)
	}

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT result FROM debate_cache WHERE prompt_hash = $1`)).
		WithArgs("hash2").
		WillReturnRows(sqlmock.NewRows([]string{"result"}))

	_, found, err = c.Get(ctx, "hash2")
	if err != nil || found {
		t.Fatalf("expected clean miss, got found=%v err=%v", found, err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostgresCachePutUpserts(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()
	c := NewPostgresCacheFromDB(db)

	mock.ExpectExec(`(?s)INSERT INTO debate_cache.*ON CONFLICT \(prompt_hash\) DO UPDATE`).
		WithArgs("hash1", []byte(`{"ok":1}`)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := c.Put(context.Background(), "hash1", []byte(`{"ok":1}`)); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestNewFallsBackToMemory(t *testing.T) {
	logger := log.New(&bytes.Buffer{}, "", 0)
	c := New(context.Background(), config.CacheConfig{}, logger)
	if _, ok := c.(*MemoryCache); !ok {
		t.Fatalf("expected memory cache, got %T", c)
	}
}

func TestNewFallsThroughDeadRedis(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(&buf, "", 0)
	cfg := config.CacheConfig{Redis: config.RedisConfig{Host: "127.0.0.1", Port: "1"}}
	c := New(context.Background(), cfg, logger)
	if _, ok := c.(*MemoryCache); !ok {
		t.Fatalf("expected memory fallback, got %T", c)
	}
	if !bytes.Contains(buf.Bytes(), []byte("redis cache init failed")) {
		t.Fatalf("expected fallback to be logged, got %q", buf.String())
	}
}
