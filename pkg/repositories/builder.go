// Package repositories provides owner-scoped data access for planora-engine.
// Every query runs on the connection held by the request's OwnerScope and
// filters by the scope's owner id; a row owned by someone else is
// indistinguishable from a missing row.
package repositories

import sq "github.com/Masterminds/squirrel"

// psql builds queries with Postgres-style $N placeholders.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
