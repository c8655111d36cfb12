// Package seed creates the accounts and locations a fresh installation needs.
// Every function is idempotent and safe to run on each boot.
package seed

import (
	"context"
	"errors"
	"fmt"

	"github.com/crucial707/vigil/internal/auth"
	"github.com/crucial707/vigil/internal/models"
	"github.com/crucial707/vigil/internal/repo"
	"go.uber.org/zap"
)

// Options controls what EnsureDefaults creates.
type Options struct {
	AdminName     string
	AdminEmail    string
	AdminPassword string
	// SampleData adds a supervisor, a guard and default locations.
	SampleData bool
}

// UserStore is the subset of repo.UserRepo seeding needs.
type UserStore interface {
	ExistsWithRole(ctx context.Context, role string) (bool, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, name, email, passwordHash, role string) (*models.User, error)
	UpdatePasswordHash(ctx context.Context, id, passwordHash string) error
	SetActive(ctx context.Context, id string, active bool) (*models.User, error)
}

// LocationStore is the subset of repo.LocationRepo seeding needs.
type LocationStore interface {
	Count(ctx context.Context) (int, error)
	Create(ctx context.Context, l models.Location) (*models.Location, error)
}

type sampleUser struct {
	name, email, password, role string
}

var sampleUsers = []sampleUser{
	{"Sample Supervisor", "supervisor@vigil.local", "supervisor123", models.RoleSupervisor},
	{"Sample Guard", "guard@vigil.local", "guard123", models.RoleGuard},
}

// DefaultLocations are created when SampleData is on and no location exists.
var DefaultLocations = []models.Location{
	{Name: "Main Entrance", Description: "Front gate and reception", Active: true},
	{Name: "Parking Lot", Description: "Outdoor parking area", Active: true},
	{Name: "Warehouse", Description: "Loading docks and storage", Active: true},
	{Name: "Perimeter Fence", Description: "North and east fence line", Active: true},
}

// EnsureDefaults creates the administrator when no administrator exists and,
// with SampleData, the sample accounts and locations that are missing.
func EnsureDefaults(ctx context.Context, users UserStore, locations LocationStore, opts Options, log *zap.Logger) error {
	if log == nil {
		log = zap.NewNop()
	}

	exists, err := users.ExistsWithRole(ctx, models.RoleAdministrator)
	if err != nil {
		return fmt.Errorf("check administrator: %w", err)
	}
	if !exists {
		if err := createUser(ctx, users, opts.AdminName, opts.AdminEmail, opts.AdminPassword, models.RoleAdministrator); err != nil {
			return err
		}
		log.Info("default administrator created", zap.String("email", opts.AdminEmail))
	}

	if !opts.SampleData {
		return nil
	}

	for _, su := range sampleUsers {
		_, err := users.GetByEmail(ctx, su.email)
		if err == nil {
			continue
		}
		if !errors.Is(err, repo.ErrNotFound) {
			return fmt.Errorf("look up %s: %w", su.email, err)
		}
		if err := createUser(ctx, users, su.name, su.email, su.password, su.role); err != nil {
			return err
		}
		log.Info("sample user created", zap.String("email", su.email), zap.String("role", su.role))
	}

	n, err := locations.Count(ctx)
	if err != nil {
		return fmt.Errorf("count locations: %w", err)
	}
	if n > 0 {
		return nil
	}
	for _, l := range DefaultLocations {
		if _, err := locations.Create(ctx, l); err != nil {
			return fmt.Errorf("create location %q: %w", l.Name, err)
		}
	}
	log.Info("default locations created", zap.Int("count", len(DefaultLocations)))
	return nil
}

// ResetAdmin sets the password of the administrator with opts.AdminEmail and
// reactivates the account, creating it when missing.
func ResetAdmin(ctx context.Context, users UserStore, opts Options) error {
	u, err := users.GetByEmail(ctx, opts.AdminEmail)
	if errors.Is(err, repo.ErrNotFound) {
		return createUser(ctx, users, opts.AdminName, opts.AdminEmail, opts.AdminPassword, models.RoleAdministrator)
	}
	if err != nil {
		return fmt.Errorf("look up %s: %w", opts.AdminEmail, err)
	}
	if u.Role != models.RoleAdministrator {
		return fmt.Errorf("%s is a %s, not an administrator", u.Email, u.Role)
	}

	hash, err := auth.HashPassword(opts.AdminPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := users.UpdatePasswordHash(ctx, u.ID, hash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if !u.Active {
		if _, err := users.SetActive(ctx, u.ID, true); err != nil {
			return fmt.Errorf("reactivate: %w", err)
		}
	}
	return nil
}

func createUser(ctx context.Context, users UserStore, name, email, password, role string) error {
	if email == "" || password == "" {
		return fmt.Errorf("seed %s: email and password are required", role)
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	_, err = users.Create(ctx, name, email, hash, role)
	// Another instance may have seeded concurrently.
	if errors.Is(err, repo.ErrEmailTaken) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("create %s %s: %w", role, email, err)
	}
	return nil
}
