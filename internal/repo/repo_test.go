package repo

import (
	"context"
	"database/sql/driver"
	"errors"
	"testing"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/equidadeplus/equidade_backend/internal/repo/evolution"
	"github.com/equidadeplus/equidade_backend/internal/repo/notification"
	"github.com/equidadeplus/equidade_backend/internal/repo/profile"
	"github.com/equidadeplus/equidade_backend/pkg/authorize"
)

func setupMockClient(t *testing.T) (*Client, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewClient(entsql.OpenDB(dialect.Postgres, db)), mock
}

func evolutionRow(id, author uuid.UUID, status evolution.Status, version int) []driver.Value {
	now := time.Now().UTC()
	return []driver.Value{
		id.String(), uuid.NewString(), uuid.NewString(), uuid.NewString(), author.String(),
		"Sessão tranquila", false, "", []byte(`["evolutions/a.pdf"]`), string(status),
		nil, nil, nil, version, now, now,
	}
}

func TestEvolutionGet_Success(t *testing.T) {
	client, mock := setupMockClient(t)
	id, author := uuid.New(), uuid.New()

	mock.ExpectQuery(`SELECT .* FROM "evolutions" WHERE "id" = \$1 LIMIT 1`).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows(evolution.Columns).
			AddRow(evolutionRow(id, author, evolution.StatusDraft, 3)...))

	e, err := client.Evolution.Get(context.Background(), id)

	require.NoError(t, err)
	assert.Equal(t, id, e.ID)
	assert.Equal(t, author, e.AuthorID)
	assert.Equal(t, evolution.StatusDraft, e.Status)
	assert.Equal(t, []string{"evolutions/a.pdf"}, e.Attachments)
	assert.Nil(t, e.CoSignature)
	assert.Nil(t, e.RevisionFeedback)
	assert.Equal(t, 3, e.Version)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEvolutionGet_CoSignature(t *testing.T) {
	client, mock := setupMockClient(t)
	id, author, supervisor := uuid.New(), uuid.New(), uuid.New()

	row := evolutionRow(id, author, evolution.StatusFinalized, 2)
	row[10] = []byte(`{"supervisor_id":"` + supervisor.String() + `","approved_at":"2026-03-01T10:00:00Z"}`)
	row[12] = "Revisar objetivos"

	mock.ExpectQuery(`SELECT .* FROM "evolutions"`).
		WillReturnRows(sqlmock.NewRows(evolution.Columns).AddRow(row...))

	e, err := client.Evolution.Get(context.Background(), id)

	require.NoError(t, err)
	require.NotNil(t, e.CoSignature)
	assert.Equal(t, supervisor, e.CoSignature.SupervisorID)
	require.NotNil(t, e.RevisionFeedback)
	assert.Equal(t, "Revisar objetivos", *e.RevisionFeedback)
}

func TestEvolutionGet_NotFound(t *testing.T) {
	client, mock := setupMockClient(t)

	mock.ExpectQuery(`SELECT .* FROM "evolutions"`).
		WillReturnRows(sqlmock.NewRows(evolution.Columns))

	_, err := client.Evolution.Get(context.Background(), uuid.New())

	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEvolutionUpdate_BumpsVersion(t *testing.T) {
	client, mock := setupMockClient(t)
	e := &Evolution{ID: uuid.New(), Status: evolution.StatusPendingSupervision, Version: 4}

	mock.ExpectExec(`UPDATE "evolutions" SET .* WHERE "id" = \$\d+ AND "version" = \$\d+`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, client.Evolution.Update(context.Background(), e, 4))
	assert.Equal(t, 5, e.Version)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEvolutionUpdate_StaleVersion(t *testing.T) {
	client, mock := setupMockClient(t)
	e := &Evolution{ID: uuid.New(), Status: evolution.StatusFinalized, Version: 1}

	mock.ExpectExec(`UPDATE "evolutions"`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := client.Evolution.Update(context.Background(), e, 1)

	assert.ErrorIs(t, err, ErrStaleVersion)
	assert.Equal(t, 1, e.Version, "version must not move on a lost race")
}

func TestEvolutionCreate_DuplicateAppointment(t *testing.T) {
	client, mock := setupMockClient(t)

	mock.ExpectExec(`INSERT INTO "evolutions"`).
		WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key value violates unique constraint"})

	err := client.Evolution.Create(context.Background(), &Evolution{
		UnitID:        uuid.New(),
		AppointmentID: uuid.New(),
		Status:        evolution.StatusDraft,
	})

	require.Error(t, err)
	assert.True(t, IsConstraintError(err))
}

func TestAppointmentHasOverlap(t *testing.T) {
	client, mock := setupMockClient(t)
	therapist := uuid.New()
	start := time.Date(2026, 3, 2, 14, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM "appointments" WHERE .*"status" NOT IN`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	taken, err := client.Appointment.HasOverlap(context.Background(), therapist, start, start.Add(50*time.Minute), uuid.Nil)

	require.NoError(t, err)
	assert.True(t, taken)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEvolutionCount_AwaitingRevision(t *testing.T) {
	client, mock := setupMockClient(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM "evolutions" WHERE .*"status" = .*"revision_feedback" IS NOT NULL`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	n, err := client.Evolution.Count(context.Background(), EvolutionFilter{UnitID: uuid.New(), AwaitingRevision: true})

	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAppointmentList_EmptyPatientScope(t *testing.T) {
	client, mock := setupMockClient(t)

	out, err := client.Appointment.List(context.Background(), AppointmentFilter{
		UnitID:     uuid.New(),
		PatientIDs: []uuid.UUID{},
	})

	require.NoError(t, err)
	assert.Empty(t, out)
	require.NoError(t, mock.ExpectationsWereMet(), "no query must run for an empty scope")
}

func TestNotificationCreateBulk(t *testing.T) {
	client, mock := setupMockClient(t)
	a, b := uuid.New(), uuid.New()

	mock.ExpectExec(`INSERT INTO "notifications" .* VALUES \(.*\), \(.*\)`).
		WillReturnResult(sqlmock.NewResult(0, 2))

	err := client.Notification.CreateBulk(context.Background(),
		&Notification{UserID: a, Type: notification.TypeEvolutionPending, Title: "Evolução pendente"},
		&Notification{UserID: b, Type: notification.TypeEvolutionPending, Title: "Evolução pendente"},
	)

	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationCreateBulk_Empty(t *testing.T) {
	client, mock := setupMockClient(t)

	require.NoError(t, client.Notification.CreateBulk(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationMarkRead(t *testing.T) {
	client, mock := setupMockClient(t)

	mock.ExpectExec(`UPDATE "notifications" SET`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	found, err := client.Notification.MarkRead(context.Background(), uuid.New(), uuid.New())

	require.NoError(t, err)
	assert.False(t, found)
}

func TestWithTx_Commit(t *testing.T) {
	client, mock := setupMockClient(t)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "evolutions"`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO "notifications"`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := client.WithTx(context.Background(), func(tx *Client) error {
		if err := tx.Evolution.Create(context.Background(), &Evolution{Status: evolution.StatusPendingSupervision}); err != nil {
			return err
		}
		return tx.Notification.CreateBulk(context.Background(), &Notification{UserID: uuid.New(), Type: notification.TypeEvolutionPending})
	})

	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTx_RollbackOnError(t *testing.T) {
	client, mock := setupMockClient(t)
	boom := errors.New("boom")

	mock.ExpectBegin()
	mock.ExpectRollback()

	err := client.WithTx(context.Background(), func(tx *Client) error {
		return boom
	})

	assert.ErrorIs(t, err, boom)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMembershipGrants(t *testing.T) {
	client, mock := setupMockClient(t)
	user, unit := uuid.New(), uuid.New()

	mock.ExpectQuery(`SELECT .* FROM "unit_memberships"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "unit_id", "role", "created_at"}).
			AddRow(uuid.NewString(), user.String(), unit.String(), "intern", time.Now()))

	grants, err := client.Membership.Grants(context.Background())

	require.NoError(t, err)
	require.Len(t, grants, 1)
	assert.Equal(t, authorize.GroupSubject(user.String()), grants[0].Subject)
	assert.Equal(t, authorize.RoleIntern, grants[0].Role)
	assert.Equal(t, authorize.UnitDomain(unit), grants[0].Domain)
}

func TestProfileListSupervisors_AdminsAndUnitCoordinators(t *testing.T) {
	client, mock := setupMockClient(t)
	unit, admin := uuid.New(), uuid.New()
	now := time.Now()

	mock.ExpectQuery(`SELECT .* FROM "profiles" WHERE "status" = \$1 AND .*"role" = \$2.* OR .*"role" = \$3 AND "id" IN \(SELECT "user_id" FROM "unit_memberships" WHERE "unit_id" = \$4\)`).
		WithArgs("active", "admin", "coordinator", unit).
		WillReturnRows(sqlmock.NewRows(profile.Columns).
			AddRow(admin.String(), "Admin", "admin@example.com", "", "admin", nil, false, "active", now, now))

	out, err := client.Profile.ListSupervisors(context.Background(), unit)

	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, admin, out[0].ID)
	assert.Equal(t, authorize.RoleAdmin, out[0].Role)
	require.NoError(t, mock.ExpectationsWereMet())
}
