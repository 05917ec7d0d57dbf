package database

import (
	"database/sql"
	stdlog "log"

	"github.com/username/rentfolio/backend/src/logger"
	_ "modernc.org/sqlite"
)

var DB *sql.DB

func InitDB(databasePath string) {
	db, err := sql.Open("sqlite", databasePath)
	if err != nil {
		stdlog.Fatalf("failed to open database at %s: %v", databasePath, err)
	}

	DB = db

	if _, err := DB.Exec("PRAGMA foreign_keys = ON"); err != nil {
		stdlog.Fatalf("failed to enable foreign keys: %v", err)
	}

	if logger.L != nil {
		logger.L.Info("Checking database migrations", "databasePath", databasePath)
	} else {
		stdlog.Println("Checking database migrations for:", databasePath)
	}
	migrateCustomerTable()

	createTableStatement := `
	CREATE TABLE IF NOT EXISTS customers (
		id TEXT PRIMARY KEY,
		company_name TEXT NOT NULL,
		contact_email TEXT NOT NULL,
		logo_url TEXT,
		status TEXT NOT NULL DEFAULT 'active',
		last_report_month INTEGER,
		last_report_year INTEGER,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS properties (
		id TEXT PRIMARY KEY,
		customer_id TEXT NOT NULL,
		property_name TEXT NOT NULL,
		address TEXT,
		unit_count INTEGER NOT NULL DEFAULT 1,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY(customer_id) REFERENCES customers(id),
		UNIQUE(customer_id, property_name)
	);

	CREATE TABLE IF NOT EXISTS property_transactions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		customer_id TEXT NOT NULL,
		property_id TEXT NOT NULL,
		transaction_date TEXT NOT NULL,
		category TEXT NOT NULL,
		description TEXT NOT NULL,
		amount REAL NOT NULL,
		transaction_type TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY(customer_id) REFERENCES customers(id),
		FOREIGN KEY(property_id) REFERENCES properties(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS reports (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		customer_id TEXT NOT NULL,
		property_id TEXT NOT NULL,
		report_month INTEGER NOT NULL,
		report_year INTEGER NOT NULL,
		pdf_url TEXT NOT NULL,
		storage_path TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'generated',
		generated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY(customer_id) REFERENCES customers(id),
		FOREIGN KEY(property_id) REFERENCES properties(id) ON DELETE CASCADE,
		UNIQUE(customer_id, property_id, report_month, report_year)
	);

	CREATE TABLE IF NOT EXISTS automation_runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_type TEXT NOT NULL,
		message TEXT NOT NULL,
		metadata TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_property_transactions_period
		ON property_transactions(property_id, transaction_date);
	`

	_, err = DB.Exec(createTableStatement)
	if err != nil {
		if logger.L != nil {
			logger.L.Error("failed to create tables", "error", err)
		}
		stdlog.Fatalf("failed to create tables: %v", err)
	}
	if logger.L != nil {
		logger.L.Info("Database tables ensured/created.")
	} else {
		stdlog.Println("Database tables ensured/created.")
	}
}

// migrateCustomerTable adds columns introduced after the first release to
// existing customer tables. New installs get them from the CREATE TABLE.
func migrateCustomerTable() {
	var tableName string
	err := DB.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='customers'").Scan(&tableName)
	if err != nil {
		if err == sql.ErrNoRows {
			if logger.L != nil {
				logger.L.Info("'customers' table does not exist, no migration needed as table will be created.")
			} else {
				stdlog.Println("'customers' table does not exist, no migration needed as table will be created.")
			}
			return
		}
		if logger.L != nil {
			logger.L.Error("Error checking for 'customers' table", "error", err)
		} else {
			stdlog.Printf("Error checking for 'customers' table: %v", err)
		}
		return
	}

	rows, err := DB.Query("PRAGMA table_info(customers)")
	if err != nil {
		if logger.L != nil {
			logger.L.Error("Error querying table schema for 'customers'", "error", err)
		} else {
			stdlog.Printf("Error querying table schema for 'customers': %v", err)
		}
		return
	}
	defer rows.Close()

	columnExists := make(map[string]bool)
	for rows.Next() {
		var cid, pk int
		var name, dataType string
		var notnullVal int
		var dfltValue interface{}

		if err := rows.Scan(&cid, &name, &dataType, &notnullVal, &dfltValue, &pk); err != nil {
			if logger.L != nil {
				logger.L.Error("Error scanning column info for 'customers'", "error", err)
			} else {
				stdlog.Printf("Error scanning column info for 'customers': %v", err)
			}
			return
		}
		columnExists[name] = true
	}
	if err = rows.Err(); err != nil {
		if logger.L != nil {
			logger.L.Error("Error iterating over column info for 'customers'", "error", err)
		} else {
			stdlog.Printf("Error iterating over column info for 'customers': %v", err)
		}
		return
	}

	if _, ok := columnExists["logo_url"]; !ok {
		_, err := DB.Exec("ALTER TABLE customers ADD COLUMN logo_url TEXT")
		if err != nil {
			logger.L.Error("Error adding 'logo_url' column to 'customers' table", "error", err)
		} else {
			logger.L.Info("Added 'logo_url' column to 'customers' table")
		}
	}
	if _, ok := columnExists["last_report_month"]; !ok {
		_, err := DB.Exec("ALTER TABLE customers ADD COLUMN last_report_month INTEGER")
		if err != nil {
			logger.L.Error("Error adding 'last_report_month' column to 'customers' table", "error", err)
		} else {
			logger.L.Info("Added 'last_report_month' column to 'customers' table")
		}
	}
	if _, ok := columnExists["last_report_year"]; !ok {
		_, err := DB.Exec("ALTER TABLE customers ADD COLUMN last_report_year INTEGER")
		if err != nil {
			logger.L.Error("Error adding 'last_report_year' column to 'customers' table", "error", err)
		} else {
			logger.L.Info("Added 'last_report_year' column to 'customers' table")
		}
	}
	if _, ok := columnExists["status"]; !ok {
		_, err := DB.Exec("ALTER TABLE customers ADD COLUMN status TEXT NOT NULL DEFAULT 'active'")
		if err != nil {
			logger.L.Error("Error adding 'status' column to 'customers' table", "error", err)
		} else {
			logger.L.Info("Added 'status' column to 'customers' table")
		}
	}
}
