// Command create-admin seeds a staff or admin account. Run once per account:
//
//	create-admin -name "Jane Doe" -email jane@city.gov -password secret -role admin
package main

import (
	"context"
	"flag"
	"log"
	"strings"
	"time"

	"civic-portal/internal/config"
	"civic-portal/internal/domain"
	"civic-portal/internal/repository"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

// buildAccount normalizes the email the same way the login paths do; a
// mixed-case seeded email would never match at login.
func buildAccount(name, email, password, role, department string) (*domain.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	hashed := string(hash)

	return &domain.User{
		Name:         name,
		Email:        strings.ToLower(strings.TrimSpace(email)),
		Role:         domain.Role(role),
		Department:   department,
		PasswordHash: &hashed,
	}, nil
}

func main() {
	var (
		name       = flag.String("name", "", "full name")
		email      = flag.String("email", "", "login email")
		password   = flag.String("password", "", "login password")
		role       = flag.String("role", "admin", "role: staff or admin")
		department = flag.String("department", domain.DefaultDepartment, "department for staff accounts")
	)
	flag.Parse()

	if *name == "" || *email == "" || *password == "" {
		log.Fatal("name, email and password are required")
	}
	if *role != string(domain.RoleStaff) && *role != string(domain.RoleAdmin) {
		log.Fatalf("invalid role %q, want staff or admin", *role)
	}

	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := pgxpool.New(ctx, cfg.DBConnString)
	if err != nil {
		log.Fatalf("postgres pool init failed: %v", err)
	}
	defer db.Close()

	user, err := buildAccount(*name, *email, *password, *role, *department)
	if err != nil {
		log.Fatalf("password hash failed: %v", err)
	}
	if err := repository.NewPostgresUsersRepo(db).Create(ctx, user); err != nil {
		log.Fatalf("account creation failed: %v", err)
	}
	log.Printf("created %s account %s (%s)", *role, user.Email, user.ID)
}
