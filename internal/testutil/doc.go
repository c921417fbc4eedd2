// Package testutil provides test helpers for enumsync.
//
// This package includes:
//   - SQL and error assertion helpers
//   - an in-memory SQLite database for dialect tests
//   - PostgreSQL setup for integration tests
//
// # Build Tags
//
// PostgreSQL helpers are only compiled with the integration tag:
//
//	go test ./... -tags=integration
//
// # Environment Variables
//
//	POSTGRES_URL - PostgreSQL connection string
//
// When POSTGRES_URL is unset, SetupPostgres starts a throwaway postgres
// container through testcontainers and reuses it for the whole test binary.
//
// # Example Usage
//
//	func TestSync(t *testing.T) {
//	    db, schema := testutil.SetupPostgres(t)
//	    testutil.ExecSQL(t, db, "CREATE TYPE "+schema+".mood AS ENUM ('ok')")
//	    testutil.AssertEnumValues(t, db, schema, "mood", []string{"ok"})
//	}
package testutil
