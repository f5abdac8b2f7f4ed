// Package testutil holds helpers shared by package tests and the
// integration suite.
package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// idNamespace seeds NewTestID so ids are stable across runs
var idNamespace = uuid.MustParse("4f1c6c1e-3a52-5d3b-9c1e-6b2f0e7d8a90")

// MockDB is a postgres-dialect gorm handle over sqlmock. Statements the
// store issues can be asserted on Mock.
type MockDB struct {
	DB    *gorm.DB
	Mock  sqlmock.Sqlmock
	SqlDB *sql.DB
}

// NewMockDB opens a gorm handle over a fresh sqlmock connection. Ping
// expectations are honored. The connection is closed when the test ends.
func NewMockDB(t *testing.T) *MockDB {
	t.Helper()

	conn, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err, "Failed to create sqlmock")
	t.Cleanup(func() { _ = conn.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: conn, DriverName: "postgres"}),
		&gorm.Config{SkipDefaultTransaction: true, DisableAutomaticPing: true})
	require.NoError(t, err, "Failed to open gorm over sqlmock")

	return &MockDB{DB: db, Mock: mock, SqlDB: conn}
}

// Close closes the mock connection
func (m *MockDB) Close() error {
	return m.SqlDB.Close()
}

// ExpectationsWereMet fails the test when a registered statement was not
// issued
func (m *MockDB) ExpectationsWereMet(t *testing.T) {
	t.Helper()
	require.NoError(t, m.Mock.ExpectationsWereMet(), "Unmet database expectations")
}

// NewEngine returns a bare gin engine in test mode
func NewEngine() *gin.Engine {
	return gin.New()
}

// NewTestID derives a stable row id from seed
func NewTestID(seed string) string {
	return uuid.NewSHA1(idNamespace, []byte(seed)).String()
}

// ContextWithTimeout returns a context cancelled after timeout or when the
// test ends
func ContextWithTimeout(t *testing.T, timeout time.Duration) (context.Context, context.CancelFunc) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	t.Cleanup(cancel)
	return ctx, cancel
}

// ContextWithCancel returns a context cancelled when the test ends
func ContextWithCancel(t *testing.T) (context.Context, context.CancelFunc) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return ctx, cancel
}

// poll evaluates condition every interval until it holds or timeout elapses
func poll(condition func() bool, timeout, interval time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for {
		if condition() {
			return true
		}
		if !time.Now().Before(deadline) {
			return false
		}
		time.Sleep(interval)
	}
}

// AssertEventually marks the test failed, and continues, when condition
// does not hold within timeout
func AssertEventually(t *testing.T, condition func() bool, timeout, interval time.Duration, msgAndArgs ...any) {
	t.Helper()
	if !poll(condition, timeout, interval) {
		t.Errorf("condition not met within %v %s", timeout, describe(msgAndArgs))
	}
}

// RequireEventually stops the test when condition does not hold within
// timeout
func RequireEventually(t *testing.T, condition func() bool, timeout, interval time.Duration, msgAndArgs ...any) {
	t.Helper()
	if !poll(condition, timeout, interval) {
		require.Fail(t, fmt.Sprintf("condition not met within %v", timeout), msgAndArgs...)
	}
}

// AssertNever fails the test if condition holds at any point during
// duration
func AssertNever(t *testing.T, condition func() bool, duration, interval time.Duration, msgAndArgs ...any) {
	t.Helper()
	if poll(condition, duration, interval) {
		t.Errorf("condition unexpectedly became true %s", describe(msgAndArgs))
	}
}

func describe(msgAndArgs []any) string {
	switch len(msgAndArgs) {
	case 0:
		return ""
	case 1:
		return fmt.Sprint(msgAndArgs[0])
	}
	if format, ok := msgAndArgs[0].(string); ok {
		return fmt.Sprintf(format, msgAndArgs[1:]...)
	}
	return fmt.Sprint(msgAndArgs...)
}
