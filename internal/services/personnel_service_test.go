package services

import (
	"errors"
	"strings"
	"testing"
	"time"

	"finflow/internal/models"
	"finflow/internal/testutil"

	"golang.org/x/crypto/bcrypt"
)

func TestNextAvailableUsername(t *testing.T) {
	tests := []struct {
		name  string
		taken []string
		want  string
	}{
		{"base_free", nil, "jdupont"},
		{"base_taken", []string{"jdupont"}, "jdupont1"},
		{"base_and_first_suffix_taken", []string{"jdupont", "jdupont1"}, "jdupont2"},
		{"gap_is_reused", []string{"jdupont", "jdupont2"}, "jdupont1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			used := map[string]bool{}
			for _, u := range tt.taken {
				used[u] = true
			}
			got, err := nextAvailableUsername("jdupont", func(s string) (bool, error) { return used[s], nil })
			testutil.AssertNoError(t, err)
			if got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}

	t.Run("lookup_error", func(t *testing.T) {
		_, err := nextAvailableUsername("x", func(string) (bool, error) { return false, errors.New("db down") })
		if err == nil {
			t.Fatal("expected lookup error to propagate")
		}
	})
}

func TestUsernameBase(t *testing.T) {
	tests := []struct {
		first, last, want string
	}{
		{"Jean", "Dupont", "jdupont"},
		{"Marie", "De La Tour", "mdelatour"},
		{"Émile", "Zola", "ézola"},
		{"", "Ndiaye", "ndiaye"},
		{"", "", ""},
	}
	for _, tt := range tests {
		if got := usernameBase(tt.first, tt.last); got != tt.want {
			t.Errorf("usernameBase(%q, %q) = %q, want %q", tt.first, tt.last, got, tt.want)
		}
	}
}

func TestGeneratePassword(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		pw, err := generatePassword(generatedPasswordLength)
		testutil.AssertNoError(t, err)
		if len(pw) != 10 {
			t.Fatalf("expected 10 characters, got %d", len(pw))
		}
		for _, r := range pw {
			if !strings.ContainsRune(passwordAlphabet, r) {
				t.Fatalf("unexpected character %q in %q", r, pw)
			}
		}
		seen[pw] = true
	}
	if len(seen) < 20 {
		t.Error("expected distinct passwords")
	}
}

func TestCreatePersonnel(t *testing.T) {
	t.Run("generates_next_free_username", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		testutil.CreateTestPersonnelWithUsername(t, db, "jdupont", models.RoleEmployee)
		testutil.CreateTestPersonnelWithUsername(t, db, "jdupont1", models.RoleEmployee)
		notifier := &recordingNotifier{}
		svc := NewPersonnelService(db, notifier)

		person, err := svc.CreatePersonnel(CreatePersonnelInput{
			Email:     "Jean.Dupont@Example.com",
			FirstName: "Jean",
			LastName:  "Dupont",
			Role:      models.RoleEmployee,
		})
		testutil.AssertNoError(t, err)
		if person.Username != "jdupont2" {
			t.Errorf("expected jdupont2, got %s", person.Username)
		}
		if person.Email != "jean.dupont@example.com" {
			t.Errorf("expected lowercased email, got %s", person.Email)
		}
	})

	t.Run("soft_deleted_usernames_stay_reserved", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		old := testutil.CreateTestPersonnelWithUsername(t, db, "jdupont", models.RoleEmployee)
		db.Delete(old)
		svc := NewPersonnelService(db, nil)

		person, err := svc.CreatePersonnel(CreatePersonnelInput{Email: "j@example.com", FirstName: "Jean", LastName: "Dupont"})
		testutil.AssertNoError(t, err)
		if person.Username != "jdupont1" {
			t.Errorf("expected jdupont1, got %s", person.Username)
		}
	})

	t.Run("password_is_mailed_and_hashed", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		notifier := &recordingNotifier{}
		svc := NewPersonnelService(db, notifier)

		person, err := svc.CreatePersonnel(CreatePersonnelInput{Email: "a@example.com", FirstName: "Awa", LastName: "Diop"})
		testutil.AssertNoError(t, err)

		msgs := notifier.messages()
		if len(msgs) != 1 || msgs[0].recipients[0] != "a@example.com" {
			t.Fatalf("expected one message to the new user, got %+v", msgs)
		}
		var password string
		for _, line := range strings.Split(msgs[0].body, "\n") {
			if strings.HasPrefix(line, "Password: ") {
				password = strings.TrimPrefix(line, "Password: ")
			}
		}
		if len(password) != generatedPasswordLength {
			t.Fatalf("expected a %d character password in the message, got %q", generatedPasswordLength, password)
		}
		if person.Password == password {
			t.Error("password must not be stored in clear")
		}
		if bcrypt.CompareHashAndPassword([]byte(person.Password), []byte(password)) != nil {
			t.Error("stored hash must match the mailed password")
		}
		if person.Role != models.RoleNone {
			t.Errorf("expected default role none, got %s", person.Role)
		}
	})

	t.Run("explicit_username_taken", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		testutil.CreateTestPersonnelWithUsername(t, db, "boss", models.RoleDirector)
		svc := NewPersonnelService(db, nil)

		_, err := svc.CreatePersonnel(CreatePersonnelInput{Username: "Boss", Email: "b@example.com"})
		testutil.AssertAppError(t, err, "DUPLICATE_USERNAME")
	})

	t.Run("missing_email", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewPersonnelService(db, nil)

		_, err := svc.CreatePersonnel(CreatePersonnelInput{FirstName: "A", LastName: "B"})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("no_name_to_derive_from", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewPersonnelService(db, nil)

		_, err := svc.CreatePersonnel(CreatePersonnelInput{Email: "x@example.com"})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestCreateSuperuser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewPersonnelService(db, nil)

	person, err := svc.CreateSuperuser("admin", "admin@example.com", "s3cretpass")
	testutil.AssertNoError(t, err)
	if !person.IsSuperuser {
		t.Error("expected superuser flag")
	}

	_, err = svc.CreateSuperuser("admin", "other@example.com", "s3cretpass")
	testutil.AssertAppError(t, err, "DUPLICATE_USERNAME")

	_, err = svc.CreateSuperuser("root", "root@example.com", "short")
	testutil.AssertAppError(t, err, "INVALID_INPUT")
}

func TestGetPrincipal(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewPersonnelService(db, nil)
	accountant := testutil.CreateTestPersonnel(t, db, models.RoleAccountant)

	p, err := svc.GetPrincipal(accountant.ID)
	testutil.AssertNoError(t, err)
	if p.ID != accountant.ID || p.Role != models.RoleAccountant || p.IsSuperuser {
		t.Errorf("unexpected principal %+v", p)
	}

	db.Model(accountant).Update("is_active", false)
	_, err = svc.GetPrincipal(accountant.ID)
	testutil.AssertAppError(t, err, "UNAUTHORIZED")

	_, err = svc.GetPrincipal("01890000-0000-7000-8000-000000000000")
	testutil.AssertAppError(t, err, "PERSONNEL_NOT_FOUND")
}

func TestAttemptLogin(t *testing.T) {
	t.Run("success_resets_attempts", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewPersonnelService(db, nil)
		person := testutil.CreateTestPersonnelWithUsername(t, db, "login", models.RoleEmployee)

		db.Model(person).Update("failed_login_attempts", 3)

		got, err := svc.AttemptLogin("LOGIN", testutil.TestPassword)
		testutil.AssertNoError(t, err)
		if got.FailedLoginAttempts != 0 {
			t.Errorf("expected 0 failed attempts after success, got %d", got.FailedLoginAttempts)
		}
		if got.LastLoginAt == nil {
			t.Error("expected LastLoginAt to be set after successful login")
		}
	})

	t.Run("lockout_after_5_failures", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewPersonnelService(db, nil)
		person := testutil.CreateTestPersonnelWithUsername(t, db, "lockout", models.RoleEmployee)

		for i := 0; i < maxFailedLogins; i++ {
			_, err := svc.AttemptLogin("lockout", "wrong")
			testutil.AssertAppError(t, err, "INVALID_CREDENTIALS")
		}

		stored, _ := svc.GetPersonnelByID(person.ID)
		if stored.LockedUntil == nil || !stored.LockedUntil.After(time.Now()) {
			t.Fatal("expected account to be locked after 5 failures")
		}

		_, err := svc.AttemptLogin("lockout", testutil.TestPassword)
		testutil.AssertAppError(t, err, "ACCOUNT_LOCKED")
	})

	t.Run("unknown_user", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewPersonnelService(db, nil)

		_, err := svc.AttemptLogin("nobody", testutil.TestPassword)
		testutil.AssertAppError(t, err, "INVALID_CREDENTIALS")
	})
}

func TestStoreAndGetRefreshTokenHash(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewPersonnelService(db, nil)
	person := testutil.CreateTestPersonnel(t, db, models.RoleEmployee)

	hash := "abcdef1234567890abcdef1234567890abcdef1234567890abcdef1234567890"
	testutil.AssertNoError(t, svc.StoreRefreshTokenHash(person.ID, hash))

	got, err := svc.GetRefreshTokenHash(person.ID)
	testutil.AssertNoError(t, err)
	if got != hash {
		t.Errorf("expected hash %s, got %s", hash, got)
	}
}
