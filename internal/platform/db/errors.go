package db

import (
	"errors"
	"strings"

	mysql "github.com/go-sql-driver/mysql"
)

// MySQL server error numbers we classify.
const (
	ErDupEntry         = 1062
	ErRowIsReferenced  = 1451
	ErNoReferencedRow  = 1452
	ErRowIsReferenced2 = 1217
	ErNoReferencedRow2 = 1216
	ErLockDeadlock     = 1213
	ErLockWaitTimeout  = 1205
)

func mysqlNumber(err error) (uint16, bool) {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number, true
	}
	return 0, false
}

func IsDuplicateKey(err error) bool {
	n, ok := mysqlNumber(err)
	return ok && n == ErDupEntry
}

// IsDuplicateKeyOn reports a duplicate-key error raised by the named unique index.
func IsDuplicateKeyOn(err error, index string) bool {
	var me *mysql.MySQLError
	if !errors.As(err, &me) || me.Number != ErDupEntry {
		return false
	}
	return strings.Contains(me.Message, index)
}

// IsRowReferenced: the row cannot be deleted because a child row points at it.
func IsRowReferenced(err error) bool {
	n, ok := mysqlNumber(err)
	return ok && (n == ErRowIsReferenced || n == ErRowIsReferenced2)
}

// IsNoReferencedRow: an insert/update points at a parent row that does not exist.
func IsNoReferencedRow(err error) bool {
	n, ok := mysqlNumber(err)
	return ok && (n == ErNoReferencedRow || n == ErNoReferencedRow2)
}

func IsLockFailure(err error) bool {
	n, ok := mysqlNumber(err)
	return ok && (n == ErLockDeadlock || n == ErLockWaitTimeout)
}
