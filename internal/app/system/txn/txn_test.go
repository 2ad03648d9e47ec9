package txn_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/dalemusser/missio/internal/app/system/txn"
	"github.com/dalemusser/missio/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestIsNotSupported(t *testing.T) {
	standalone := []error{
		mongo.CommandError{Code: 20, Message: "Transaction numbers are only allowed on a replica set member or mongos"},
		mongo.CommandError{Code: 51, Message: "IllegalOperation"},
		mongo.CommandError{Code: 263, Message: "operation not supported in transaction"},
		errors.New("Transaction numbers are only allowed on a Replica Set member"),
		errors.New("sessions are NOT SUPPORTED by this deployment"),
		errors.New("cannot start a transaction without a session"),
		fmt.Errorf("events.attach_result: %w", mongo.CommandError{Code: 20}),
	}
	for _, err := range standalone {
		assert.True(t, txn.IsNotSupported(err), "%v", err)
	}

	other := []error{
		nil,
		errors.New("connection reset by peer"),
		errors.New("transaction aborted"),
		mongo.CommandError{Code: 11000, Message: "E11000 duplicate key error"},
		context.DeadlineExceeded,
	}
	for _, err := range other {
		assert.False(t, txn.IsNotSupported(err), "%v", err)
	}
}

func TestRun(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	coll := db.Collection("txn_probe")
	// Transactions need an existing collection on older servers.
	_, err := coll.InsertOne(ctx, bson.M{"seed": true})
	require.NoError(t, err)

	err = txn.Run(ctx, db.Client(), func(sc mongo.SessionContext) error {
		_, err := coll.InsertOne(sc, bson.M{"n": 1})
		return err
	})
	if errors.Is(err, txn.ErrNotSupported) {
		t.Skip("deployment does not support transactions")
	}
	require.NoError(t, err)

	n, err := coll.CountDocuments(ctx, bson.M{"n": 1})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	boom := errors.New("boom")
	err = txn.Run(ctx, db.Client(), func(sc mongo.SessionContext) error {
		if _, err := coll.InsertOne(sc, bson.M{"n": 2}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	n, err = coll.CountDocuments(ctx, bson.M{"n": 2})
	require.NoError(t, err)
	assert.Zero(t, n, "aborted transaction must not leave writes behind")
}
