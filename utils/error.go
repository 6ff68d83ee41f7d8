package utils

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

var ErrorRecordNotFound = errors.New("record not found")

// ErrorInvariant marks calculation failures that indicate a programming bug
// (duplicate account id, enum coverage hole), not bad user input. Handlers
// map it to a 500 and never retry.
var ErrorInvariant = errors.New("internal invariant violated")

// IsDuplicateEntry reports whether err is a MySQL duplicate-key violation.
func IsDuplicateEntry(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == 1062
}
