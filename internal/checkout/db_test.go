package checkout

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupCheckoutTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	statements := []string{
		`CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  sku TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL,
  uom_abbrev TEXT NOT NULL DEFAULT 'pc',
  unit_selling_price TEXT NOT NULL,
  current_stock_qty TEXT NOT NULL DEFAULT '0',
  tax_rate_id TEXT,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS sales_order_lines (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  name TEXT NOT NULL,
  uom_abbrev TEXT NOT NULL DEFAULT 'pc',
  order_unit_selling_price TEXT NOT NULL,
  order_qty NUMERIC NOT NULL,
  fulfilled_order_qty NUMERIC NOT NULL DEFAULT 0,
  tax_rate_id TEXT,
  tax_rate_percentage TEXT NOT NULL DEFAULT '0',
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS invoices (
  id TEXT PRIMARY KEY,
  invoice_number INTEGER NOT NULL UNIQUE,
  register_id TEXT NOT NULL,
  grand_total_amount TEXT NOT NULL,
  total_taxable_amount TEXT NOT NULL DEFAULT '0',
  total_taxable_net_amount TEXT NOT NULL DEFAULT '0',
  total_tax_exempt_amount TEXT NOT NULL DEFAULT '0',
  total_tax_amount TEXT NOT NULL DEFAULT '0',
  issued_at DATETIME NOT NULL,
  created_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS invoice_items (
  id TEXT PRIMARY KEY,
  invoice_id TEXT NOT NULL,
  line_key TEXT NOT NULL,
  key_scheme TEXT NOT NULL,
  product_id TEXT,
  order_line_id TEXT,
  name TEXT NOT NULL,
  uom_abbrev TEXT NOT NULL DEFAULT 'pc',
  size_label TEXT NOT NULL DEFAULT '',
  unit_selling_price TEXT NOT NULL,
  sale_qty TEXT NOT NULL,
  sale_subtotal TEXT NOT NULL,
  tax_rate_id TEXT,
  tax_rate_percentage TEXT NOT NULL DEFAULT '0',
  created_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS merchant_profiles (
  id TEXT PRIMARY KEY,
  display_name TEXT NOT NULL,
  branch_name TEXT NOT NULL DEFAULT '',
  address TEXT NOT NULL DEFAULT '',
  created_at DATETIME,
  updated_at DATETIME
);`,
	}
	for _, stmt := range statements {
		require.NoError(t, conn.Exec(stmt).Error)
	}
	return conn
}
