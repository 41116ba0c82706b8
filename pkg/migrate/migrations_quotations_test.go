package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/karimfarhat/suqly-backend/pkg/migrate"
)

func readMigration(t *testing.T, pattern string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join("migrations", pattern))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no migration matching %q", pattern)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	return string(data)
}

func TestQuotationsMigrationContainsConstraints(t *testing.T) {
	content := readMigration(t, "*_create_quotations.sql")

	checks := []string{
		"CREATE TYPE quotation_status AS ENUM",
		"'pending'",
		"'converted'",
		"'expired'",
		"CREATE UNIQUE INDEX IF NOT EXISTS ux_quotations_ticket",
		"ON quotations (converted_to_order_id)",
		"WHERE converted_to_order_id IS NOT NULL",
		"WHERE status = 'pending' AND admin_viewed_at IS NULL",
		"FOREIGN KEY (quotation_id) REFERENCES quotations(id) ON DELETE CASCADE",
		"CHECK (qty > 0)",
		"DROP TABLE IF EXISTS quotations",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestResponsesMigrationEnforcesSingleResponseAndBounds(t *testing.T) {
	content := readMigration(t, "*_create_quotation_responses.sql")

	checks := []string{
		"CREATE TYPE response_format AS ENUM ('save', 'whatsapp', 'pdf')",
		"CHECK (validity_days IN (3, 7, 15, 30))",
		"CHECK (discount_percent BETWEEN 0 AND 100)",
		"CREATE UNIQUE INDEX IF NOT EXISTS ux_quotation_responses_quotation",
		"CHECK (adjusted_price_cents >= 0)",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestOrdersMigrationEnforcesOneOrderPerQuotation(t *testing.T) {
	content := readMigration(t, "*_create_orders.sql")

	checks := []string{
		"CREATE UNIQUE INDEX IF NOT EXISTS ux_orders_quotation ON orders (quotation_id)",
		"CREATE UNIQUE INDEX IF NOT EXISTS ux_orders_ticket",
		"payment_status payment_status NOT NULL DEFAULT 'pending'",
		"FOREIGN KEY (quotation_id) REFERENCES quotations(id) ON DELETE RESTRICT",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestMigrationFilenamesValidate(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("validate migrations dir: %v", err)
	}
}
