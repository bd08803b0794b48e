package testhelpers

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// WarehouseFixture is a tiny LOSTMA corpus: two Latin texts and one Old French text,
// three witnesses, and two parts of which part 100 is observed by two witnesses.
var WarehouseFixture = []string{
	`CREATE TABLE "TextTable" ("H-ID" integer, type_id integer, title text, "language_COLUMN" text,
		review_status text, "in_stemma H-ID" integer[])`,
	`CREATE TABLE "Witness" ("H-ID" integer, type_id integer, shelfmark text,
		"is_manifestation_of H-ID" integer, "observed_on_pages H-ID" integer[], review_status text)`,
	`CREATE TABLE "Part" ("H-ID" integer, type_id integer, folio text, hands text[], review_status text)`,
	`CREATE TABLE "Person" ("H-ID" integer, type_id integer, name text, "language TRM-ID" integer)`,
	`CREATE TABLE rty ("rty_ID" integer, "rty_Name" text)`,
	`INSERT INTO "TextTable" VALUES
		(1, 10, 'Chanson', 'Latin', 'Action required', '{}'),
		(2, 10, NULL, 'Latin', NULL, NULL),
		(3, 10, 'Roman', 'Old French', NULL, NULL)`,
	`INSERT INTO "Witness" VALUES
		(11, 20, 'MS 1', 1, '{100}', NULL),
		(12, 20, NULL, 1, '{100,101}', 'Action required'),
		(13, 20, 'MS 3', 3, '{}', NULL)`,
	`INSERT INTO "Part" VALUES
		(100, 30, NULL, '{}', NULL),
		(101, 30, '12r', '{a}', NULL)`,
	`INSERT INTO "Person" VALUES (200, 40, NULL, 7)`,
	`INSERT INTO rty VALUES (10, 'text'), (20, 'witness'), (30, 'part'), (40, 'person')`,
}

func seedWarehouse(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range WarehouseFixture {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("exec fixture statement: %w", err)
		}
	}
	return nil
}
