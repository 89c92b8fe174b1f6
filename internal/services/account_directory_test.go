package services

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/charlesng35/collegehub/internal/database/testutil"
	"github.com/charlesng35/collegehub/internal/models"
	apperrors "github.com/charlesng35/collegehub/pkg/errors"
)

func TestAccountDirectorySystemAccountIsCreatedOnce(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	ctx := context.Background()

	var (
		ids  []string
		errs []error
		mu   sync.Mutex
		wg   sync.WaitGroup
	)
	for i := 0; i < 4; i++ {
		directory, err := NewAccountDirectory(db, "")
		require.NoError(t, err)
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := directory.SystemAccountID(ctx)
			mu.Lock()
			ids = append(ids, id)
			errs = append(errs, err)
			mu.Unlock()
		}()
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
	var count int64
	require.NoError(t, db.Model(&models.Account{}).Where("email = ?", models.SystemAccountEmail).Count(&count).Error)
	require.EqualValues(t, 1, count)
	for _, id := range ids {
		require.Equal(t, ids[0], id)
	}
}

func TestAccountDirectoryReusesSeededSystemAccount(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithSeedData())
	directory, err := NewAccountDirectory(db, "")
	require.NoError(t, err)

	var seeded models.Account
	require.NoError(t, db.Where("email = ?", models.SystemAccountEmail).First(&seeded).Error)

	id, err := directory.SystemAccountID(context.Background())
	require.NoError(t, err)
	require.Equal(t, seeded.ID, id)
}

func TestAccountDirectoryCreateAndResolve(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	directory, err := NewAccountDirectory(db, "")
	require.NoError(t, err)
	ctx := context.Background()

	created, err := directory.CreateAccount(ctx, CreateAccountInput{
		Email:     " Jane.Doe@College.edu ",
		Password:  "correct horse",
		FirstName: "Jane",
		LastName:  "Doe",
		Role:      models.RoleStudent,
	})
	require.NoError(t, err)
	require.Equal(t, "jane.doe@college.edu", created.Account.Email)
	require.NotNil(t, created.Student)
	require.Contains(t, created.Student.RegistrationNumber, "STU-")

	resolved, err := directory.Resolve(ctx, created.ID())
	require.NoError(t, err)
	require.Equal(t, models.RoleStudent, resolved.Role())
	require.Equal(t, created.Student.ID, resolved.Student.ID)
	require.Nil(t, resolved.Staff)
	require.Equal(t, "Jane Doe", resolved.DisplayName())

	_, err = directory.CreateAccount(ctx, CreateAccountInput{Email: "jane.doe@college.edu", Password: "x", Role: models.RoleStaff})
	require.ErrorIs(t, err, ErrAccountExists)

	_, err = directory.CreateAccount(ctx, CreateAccountInput{Email: "bot@college.edu", Password: "x", Role: models.RoleSystem})
	require.ErrorIs(t, err, apperrors.ErrBadRequest)

	_, err = directory.Resolve(ctx, "missing")
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestAccountDirectoryAuthenticate(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithSeedData())
	directory, err := NewAccountDirectory(db, "")
	require.NoError(t, err)
	ctx := context.Background()

	staff, err := directory.CreateAccount(ctx, CreateAccountInput{Email: "kim@college.edu", Password: "pa55word", Role: models.RoleStaff})
	require.NoError(t, err)

	account, err := directory.Authenticate(ctx, "KIM@college.edu", "pa55word")
	require.NoError(t, err)
	require.Equal(t, staff.ID(), account.ID)

	_, err = directory.Authenticate(ctx, "kim@college.edu", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = directory.Authenticate(ctx, "nobody@college.edu", "pa55word")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = directory.Authenticate(ctx, models.SystemAccountEmail, "")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	require.NoError(t, directory.SetActive(ctx, staff.ID(), false))
	_, err = directory.Authenticate(ctx, "kim@college.edu", "pa55word")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAccountDirectoryEnsureAdmin(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithSeedData())
	directory, err := NewAccountDirectory(db, "")
	require.NoError(t, err)
	ctx := context.Background()

	input := CreateAccountInput{Email: "hod@college.edu", Password: "admin123", FirstName: "Head"}
	created, err := directory.EnsureAdmin(ctx, input)
	require.NoError(t, err)
	require.True(t, created)

	created, err = directory.EnsureAdmin(ctx, input)
	require.NoError(t, err)
	require.False(t, created)

	admins, err := directory.ActiveAdmins(ctx)
	require.NoError(t, err)
	require.Len(t, admins, 1)
	require.Equal(t, "hod@college.edu", admins[0].Email)
}

func TestAccountDirectorySetActiveIgnoresSystemAccount(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithSeedData())
	directory, err := NewAccountDirectory(db, "")
	require.NoError(t, err)

	id, err := directory.SystemAccountID(context.Background())
	require.NoError(t, err)
	require.ErrorIs(t, directory.SetActive(context.Background(), id, false), apperrors.ErrNotFound)
}
