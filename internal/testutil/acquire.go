package testutil

import (
	"context"
	"os"
	"path/filepath"

	"github.com/alicebob/miniredis/v2"
	"github.com/andrebq/turnstile/userdb"
	"github.com/redis/go-redis/v9"
)

type (
	TestLog interface {
		Fatal(...interface{})
		Log(...interface{})
	}
)

func AcquireUserDB(ctx context.Context, t TestLog, name string) (*userdb.DB, func()) {
	dir, err := os.MkdirTemp("", "turnstile-tests")
	if err != nil {
		t.Fatal(err)
	}
	db, err := userdb.Open(ctx, filepath.Join(dir, name, "turnstile.db"))
	if err != nil {
		os.RemoveAll(dir)
		t.Fatal(err)
	}
	return db, func() {
		err := db.Close()
		if err != nil {
			t.Log("unable to close database", err)
		}
		err = os.RemoveAll(dir)
		if err != nil {
			t.Log("unable to cleanup temp dir", dir)
		}
	}
}

func AcquireRedis(t TestLog) (*miniredis.Miniredis, redis.UniversalClient, func()) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatal(err)
	}
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return mr, client, func() {
		if err := client.Close(); err != nil {
			t.Log("unable to close redis client", err)
		}
		mr.Close()
	}
}
