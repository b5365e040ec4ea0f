// Package errors classifies storage errors so callers can map them to API errors.
package errors

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

// DBErrorKind is the category of a storage failure.
type DBErrorKind int

const (
	// KindUnknown is any error that could not be classified.
	KindUnknown DBErrorKind = iota
	// KindNotFound is gorm.ErrRecordNotFound.
	KindNotFound
	// KindDuplicateKey is a unique index violation (MySQL 1062).
	KindDuplicateKey
	// KindConstraint is a foreign key violation (MySQL 1451, 1452).
	KindConstraint
	// KindDeadlock is a deadlock or lock wait timeout (MySQL 1213, 1205). The transaction may be retried.
	KindDeadlock
	// KindInvalidValue is a NULL, truncated or too long value (MySQL 1048, 1265, 1366, 1406).
	KindInvalidValue
	// KindConnection is a network level failure talking to the database.
	KindConnection
)

var kindNames = map[DBErrorKind]string{
	KindUnknown:      "unknown",
	KindNotFound:     "not_found",
	KindDuplicateKey: "duplicate_key",
	KindConstraint:   "constraint",
	KindDeadlock:     "deadlock",
	KindInvalidValue: "invalid_value",
	KindConnection:   "connection",
}

// String returns the snake_case name used in logs.
func (k DBErrorKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// DBError wraps a storage error with its classification.
type DBError struct {
	Kind      DBErrorKind
	MySQLCode uint16
	Err       error
}

// Error implements the error interface.
func (e *DBError) Error() string {
	if e.MySQLCode > 0 {
		return fmt.Sprintf("db %s (mysql %d): %v", e.Kind, e.MySQLCode, e.Err)
	}
	return fmt.Sprintf("db %s: %v", e.Kind, e.Err)
}

// Unwrap returns the original error.
func (e *DBError) Unwrap() error {
	return e.Err
}

// ClassifyDBError inspects gorm and MySQL driver errors. It returns nil for a nil error.
//
//	if dbErr := errors.ClassifyDBError(err); dbErr.Kind == errors.KindDuplicateKey {
//	    return ErrAlreadyEnrolled
//	}
func ClassifyDBError(err error) *DBError {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &DBError{Kind: KindNotFound, Err: err}
	}

	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return &DBError{Kind: mysqlKind(mysqlErr.Number), MySQLCode: mysqlErr.Number, Err: err}
	}

	if errors.Is(err, mysql.ErrInvalidConn) || isConnectionError(err.Error()) {
		return &DBError{Kind: KindConnection, Err: err}
	}

	return &DBError{Kind: KindUnknown, Err: err}
}

func mysqlKind(code uint16) DBErrorKind {
	switch code {
	case 1062:
		return KindDuplicateKey
	case 1451, 1452:
		return KindConstraint
	case 1213, 1205:
		return KindDeadlock
	case 1048, 1265, 1366, 1406:
		return KindInvalidValue
	case 2002, 2003, 2006, 2013:
		return KindConnection
	default:
		return KindUnknown
	}
}

var connectionKeywords = []string{
	"connection refused",
	"connection reset",
	"broken pipe",
	"no such host",
	"i/o timeout",
	"bad connection",
	"dial tcp",
}

func isConnectionError(msg string) bool {
	msg = strings.ToLower(msg)
	for _, keyword := range connectionKeywords {
		if strings.Contains(msg, keyword) {
			return true
		}
	}
	return false
}

// IsNotFound reports whether err is a missing record.
func IsNotFound(err error) bool {
	return kindOf(err) == KindNotFound
}

// IsDuplicateKey reports whether err violates a unique index.
func IsDuplicateKey(err error) bool {
	return kindOf(err) == KindDuplicateKey
}

// IsRetryable reports whether the transaction that produced err may be retried.
func IsRetryable(err error) bool {
	k := kindOf(err)
	return k == KindDeadlock || k == KindConnection
}

func kindOf(err error) DBErrorKind {
	if dbErr := ClassifyDBError(err); dbErr != nil {
		return dbErr.Kind
	}
	return -1
}
