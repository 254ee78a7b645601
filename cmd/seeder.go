package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/araufdev/business-management/internal/module"
	"github.com/araufdev/business-management/internal/user"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with the protected admin role and user",
	Long:  `Seed the database with the protected Admin role, its module grants and the system admin account.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		sqlDB, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		db, err := initGorm(sqlDB)
		if err != nil {
			log.Fatalf("failed to init orm: %v", err)
		}

		if clearData {
			if err := db.Exec("DELETE FROM role_modules").Error; err != nil {
				log.Fatalf("failed to clear role_modules: %v", err)
			}
			if err := db.Exec("DELETE FROM users").Error; err != nil {
				log.Fatalf("failed to clear users: %v", err)
			}
			if err := db.Exec("DELETE FROM roles").Error; err != nil {
				log.Fatalf("failed to clear roles: %v", err)
			}
			fmt.Println("Cleared existing roles, grants and users")
		}

		var adminRoleID int64
		row := db.Raw("SELECT id FROM roles WHERE name = ?", "Admin").Row()
		if err := row.Scan(&adminRoleID); err != nil {
			if err := db.Exec(
				"INSERT INTO roles (name, description, is_protected, created_at, updated_at) VALUES (?, ?, true, now(), now())",
				"Admin", "Full access to every module",
			).Error; err != nil {
				log.Fatalf("failed to insert Admin role: %v", err)
			}
			if err := db.Raw("SELECT id FROM roles WHERE name = ?", "Admin").Row().Scan(&adminRoleID); err != nil {
				log.Fatalf("Admin role not found after insert: %v", err)
			}
			fmt.Println("Seeded Admin role")
		} else {
			// Roles seeded before the protected flag existed must be repaired.
			if err := db.Exec("UPDATE roles SET is_protected = true WHERE id = ?", adminRoleID).Error; err != nil {
				log.Fatalf("failed to mark Admin role protected: %v", err)
			}
			fmt.Println("Admin role already exists; will ensure grants")
		}

		for _, name := range module.All() {
			var exists int
			row := db.Raw("SELECT 1 FROM role_modules WHERE role_id = ? AND module = ?", adminRoleID, name).Row()
			if err := row.Scan(&exists); err == nil {
				continue
			}
			if err := db.Exec(
				"INSERT INTO role_modules (role_id, module, created_at) VALUES (?, ?, now())",
				adminRoleID, name,
			).Error; err != nil {
				log.Fatalf("failed to grant module %s to Admin role: %v", name, err)
			}
		}
		fmt.Println("Granted every module to the Admin role")

		var adminUserID int64
		row = db.Raw("SELECT id FROM users WHERE email = ?", user.SystemAdminEmail).Row()
		if err := row.Scan(&adminUserID); err != nil {
			password := os.Getenv("SEED_ADMIN_PASSWORD")
			if password == "" {
				password = "password"
			}
			hash, err := bcrypt.GenerateFromPassword([]byte(password), cfg.Security.BCryptCost)
			if err != nil {
				log.Fatalf("failed to hash admin password: %v", err)
			}
			if err := db.Exec(
				"INSERT INTO users (first_name, last_name, email, password_hash, role_id, created_at, updated_at) VALUES (?, ?, ?, ?, ?, now(), now())",
				"System", "Admin", user.SystemAdminEmail, string(hash), adminRoleID,
			).Error; err != nil {
				log.Fatalf("failed to insert system admin user: %v", err)
			}
			fmt.Println("Seeded system admin user:", user.SystemAdminEmail)
		} else {
			// Keep the account on the Admin role even if somebody moved it.
			if err := db.Exec("UPDATE users SET role_id = ? WHERE id = ?", adminRoleID, adminUserID).Error; err != nil {
				log.Fatalf("failed to restore admin role assignment: %v", err)
			}
			fmt.Println("System admin user already exists; ensured Admin role assignment")
		}

		fmt.Println("Seeding completed")
	},
}
