// internal/store/store.go
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"vitalscan/internal/common/errors"
	"vitalscan/internal/common/logger"
	"vitalscan/internal/profile"
)

// StoredDiagnostic is one persisted diagnostic record.
type StoredDiagnostic struct {
	ID        string                     `json:"id"`
	Profile   *profile.DiagnosticProfile `json:"profile"`
	CreatedAt time.Time                  `json:"created_at"`
}

// Gateway persists diagnostics to Postgres with a JSON snapshot fallback.
// A database failure degrades to a snapshot file; only when the snapshot
// also fails does persistence count as failed.
type Gateway struct {
	db      *sql.DB
	dataDir string
	logger  logger.Logger
}

func NewGateway(db *sql.DB, dataDir string, log logger.Logger) *Gateway {
	return &Gateway{
		db:      db,
		dataDir: dataDir,
		logger:  log,
	}
}

const insertQuery = `INSERT INTO diagnostics (
	id, name, surname, email, phone, age, gender, weight, height, bmi,
	blood_pressure, pulse, energy_level, sleep_habits, eating_habits,
	physical_activity, stress_level, symptoms, medical_history, objectives,
	comments, surveyor_name, surveyor_id, diagnosis, recommendations, created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
	$16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26)`

// Store writes the record to Postgres. When the insert fails it falls back
// to a JSON snapshot on disk and returns nil; the job carries on. Only a
// double failure returns a PersistenceError.
func (g *Gateway) Store(ctx context.Context, rec *StoredDiagnostic) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	insertErr := g.insert(ctx, rec)
	if insertErr == nil {
		return nil
	}

	g.logger.WithError(insertErr).Warn("database insert failed, writing snapshot", map[string]interface{}{
		"diagnostic_id": rec.ID,
	})

	if snapErr := g.writeSnapshot(rec); snapErr != nil {
		return errors.NewPersistenceError(insertErr, snapErr)
	}

	return nil
}

func (g *Gateway) insert(ctx context.Context, rec *StoredDiagnostic) error {
	if g.db == nil {
		return fmt.Errorf("no database connection")
	}

	p := rec.Profile

	var bmi sql.NullFloat64
	if p.BMI != nil {
		bmi = sql.NullFloat64{Float64: *p.BMI, Valid: true}
	}

	_, err := g.db.ExecContext(ctx, insertQuery,
		rec.ID, p.Name, p.Surname, p.Email, p.Phone, p.Age, p.Gender,
		p.Weight, p.Height, bmi, p.BloodPressure, p.Pulse, p.EnergyLevel,
		p.SleepHabits, p.EatingHabits, p.PhysicalActivity, p.StressLevel,
		p.Symptoms, p.MedicalHistory, p.Objectives, p.Comments,
		p.SurveyorName, p.SurveyorID, p.Diagnosis, p.Recommendations,
		rec.CreatedAt,
	)
	if err != nil {
		return errors.NewDatabaseInsertFailedError(err)
	}

	return nil
}

// SnapshotPath returns the fallback file location for one diagnostic id.
func (g *Gateway) SnapshotPath(id string) string {
	return filepath.Join(g.dataDir, fmt.Sprintf("diagnostic_%s.json", id))
}

func (g *Gateway) writeSnapshot(rec *StoredDiagnostic) error {
	if err := os.MkdirAll(g.dataDir, 0o755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	if err := os.WriteFile(g.SnapshotPath(rec.ID), data, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}

	return nil
}

const selectQuery = `SELECT id, name, surname, email, phone, age, gender,
	weight, height, bmi, blood_pressure, pulse, energy_level, sleep_habits,
	eating_habits, physical_activity, stress_level, symptoms, medical_history,
	objectives, comments, surveyor_name, surveyor_id, diagnosis,
	recommendations, created_at
FROM diagnostics WHERE id = $1`

// Fetch looks up a diagnostic by id, first in Postgres, then in the
// snapshot directory. A miss in both is (nil, nil), not an error; the
// caller decides how to present an unknown id.
func (g *Gateway) Fetch(ctx context.Context, id string) (*StoredDiagnostic, error) {
	if g.db != nil {
		rec, err := g.fetchRow(ctx, id)
		if err == nil && rec != nil {
			return rec, nil
		}
		if err != nil && err != sql.ErrNoRows {
			g.logger.WithError(err).Warn("database fetch failed, trying snapshot", map[string]interface{}{
				"diagnostic_id": id,
			})
		}
	}

	return g.readSnapshot(id)
}

func (g *Gateway) fetchRow(ctx context.Context, id string) (*StoredDiagnostic, error) {
	rec := &StoredDiagnostic{Profile: &profile.DiagnosticProfile{}}
	p := rec.Profile

	var bmi sql.NullFloat64

	err := g.db.QueryRowContext(ctx, selectQuery, id).Scan(
		&rec.ID, &p.Name, &p.Surname, &p.Email, &p.Phone, &p.Age, &p.Gender,
		&p.Weight, &p.Height, &bmi, &p.BloodPressure, &p.Pulse,
		&p.EnergyLevel, &p.SleepHabits, &p.EatingHabits, &p.PhysicalActivity,
		&p.StressLevel, &p.Symptoms, &p.MedicalHistory, &p.Objectives,
		&p.Comments, &p.SurveyorName, &p.SurveyorID, &p.Diagnosis,
		&p.Recommendations, &rec.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if bmi.Valid {
		p.BMI = &bmi.Float64
	}

	return rec, nil
}

func (g *Gateway) readSnapshot(id string) (*StoredDiagnostic, error) {
	data, err := os.ReadFile(g.SnapshotPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var rec StoredDiagnostic
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}

	return &rec, nil
}
