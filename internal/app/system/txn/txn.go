// Package txn runs multi-document writes inside a MongoDB transaction and
// detects deployments (standalone servers) where transactions are unavailable.
package txn

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
)

// ErrNotSupported is returned by Run when the deployment cannot run
// transactions. Callers fall back to an ordered, non-transactional sequence.
var ErrNotSupported = errors.New("transactions not supported by this deployment")

// Run executes fn inside a transaction on a fresh session. The driver retries
// fn on transient transaction errors, so fn must be safe to run more than once.
func Run(ctx context.Context, client *mongo.Client, fn func(sc mongo.SessionContext) error) error {
	sess, err := client.StartSession()
	if err != nil {
		if IsNotSupported(err) {
			return ErrNotSupported
		}
		return err
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	if err != nil && IsNotSupported(err) {
		return ErrNotSupported
	}
	return err
}

// IsNotSupported reports whether err indicates the server cannot run
// transactions or sessions (for example a standalone mongod).
func IsNotSupported(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) {
		switch ce.Code {
		case 20, 51, 263:
			return true
		}
	}
	msg := strings.ToLower(err.Error())
	has := func(s string) bool { return strings.Contains(msg, s) }
	switch {
	case has("transaction") && has("replica set"):
		return true
	case has("session") && has("not supported"):
		return true
	case has("transaction") && has("session"):
		return true
	case has("illegal operation"):
		return true
	}
	return false
}
