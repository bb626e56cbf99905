package errors

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// Trace flattens an error chain for structured logging, surfacing postgres
// driver details when the chain contains a *pgconn.PgError.
type Trace struct {
	Message string
	Code    Code
	Chain   []string
	PG      *pgconn.PgError
}

func Dump(err error) Trace {
	if err == nil {
		return Trace{}
	}

	t := Trace{Message: err.Error()}
	if typed := As(err); typed != nil {
		t.Code = typed.Code()
	}
	for e := err; e != nil; e = errors.Unwrap(e) {
		t.Chain = append(t.Chain, fmt.Sprintf("%T: %v", e, e))
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		t.PG = pgErr
	}
	return t
}

// Fields renders the trace as logger fields.
func (t Trace) Fields() map[string]any {
	fields := map[string]any{
		"error":       t.Message,
		"error_chain": t.Chain,
	}
	if t.Code != "" {
		fields["error_code"] = string(t.Code)
	}
	if t.PG != nil {
		fields["pg_code"] = t.PG.Code
		fields["pg_message"] = t.PG.Message
		fields["pg_detail"] = t.PG.Detail
		fields["pg_table"] = t.PG.TableName
		fields["pg_column"] = t.PG.ColumnName
		fields["pg_constraint"] = t.PG.ConstraintName
	}
	return fields
}
