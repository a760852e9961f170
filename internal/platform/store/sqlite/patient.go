package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/labdesk/labdesk/internal/domain/patient"
)

type patientRepo struct{ s *Store }

// Patients returns the patient repository view.
func (s *Store) Patients() patient.PatientRepository { return &patientRepo{s: s} }

const patientCols = `id, name, age, gender, phone, source, created_at, updated_at`

func scanPatient(row interface{ Scan(...any) error }) (*patient.Patient, error) {
	var (
		p                     patient.Patient
		id                    string
		age                   sql.NullInt64
		gender, phone, source sql.NullString
		created, updated      string
	)
	if err := row.Scan(&id, &p.Name, &age, &gender, &phone, &source, &created, &updated); err != nil {
		return nil, err
	}
	var err error
	if p.ID, err = uuid.Parse(id); err != nil {
		return nil, err
	}
	p.Age = intPtr(age)
	p.Gender = strPtr(gender)
	p.Phone = strPtr(phone)
	p.Source = strPtr(source)
	p.CreatedAt = parseTime(created)
	p.UpdatedAt = parseTime(updated)
	return &p, nil
}

func (r *patientRepo) Create(ctx context.Context, p *patient.Patient) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	_, err := r.s.db.ExecContext(ctx, `
		INSERT INTO patients (id, name, age, gender, phone, source, created_at, updated_at)
		VALUES (?,?,?,?,?,?,?,?)`,
		p.ID.String(), p.Name, nullInt(p.Age), nullStr(p.Gender), nullStr(p.Phone),
		nullStr(p.Source), now(), now())
	return err
}

func (r *patientRepo) GetByID(ctx context.Context, id uuid.UUID) (*patient.Patient, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return scanPatient(r.s.db.QueryRowContext(ctx,
		`SELECT `+patientCols+` FROM patients WHERE id = ?`, id.String()))
}

func (r *patientRepo) Update(ctx context.Context, p *patient.Patient) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	_, err := r.s.db.ExecContext(ctx, `
		UPDATE patients SET name=?, age=?, gender=?, phone=?, source=?, updated_at=?
		WHERE id = ?`,
		p.Name, nullInt(p.Age), nullStr(p.Gender), nullStr(p.Phone), nullStr(p.Source),
		now(), p.ID.String())
	return err
}

func (r *patientRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	_, err := r.s.db.ExecContext(ctx, `DELETE FROM patients WHERE id = ?`, id.String())
	return err
}

func (r *patientRepo) DeleteAll(ctx context.Context) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	_, err := r.s.db.ExecContext(ctx, `DELETE FROM patients`)
	return err
}

func (r *patientRepo) List(ctx context.Context, limit, offset int) ([]*patient.Patient, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var total int
	if err := r.s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM patients`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.s.db.QueryContext(ctx,
		`SELECT `+patientCols+` FROM patients ORDER BY created_at DESC LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*patient.Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, p)
	}
	return items, total, rows.Err()
}

type visitRepo struct{ s *Store }

// Visits returns the visit repository view.
func (s *Store) Visits() patient.VisitRepository { return &visitRepo{s: s} }

const visitCols = `id, patient_id, patient_name, visit_date, total_cost, test_ids, created_at, updated_at`

func scanVisit(row interface{ Scan(...any) error }) (*patient.Visit, error) {
	var (
		v                patient.Visit
		id, patientID    string
		visitDate        string
		totalCost        sql.NullString
		testIDs          string
		created, updated string
	)
	if err := row.Scan(&id, &patientID, &v.PatientName, &visitDate, &totalCost,
		&testIDs, &created, &updated); err != nil {
		return nil, err
	}
	var err error
	if v.ID, err = uuid.Parse(id); err != nil {
		return nil, err
	}
	if v.PatientID, err = uuid.Parse(patientID); err != nil {
		return nil, err
	}
	v.VisitDate = parseTime(visitDate)
	if v.TotalCost, err = decPtr(totalCost); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(testIDs), &v.TestIDs); err != nil {
		return nil, fmt.Errorf("decode test_ids: %w", err)
	}
	v.CreatedAt = parseTime(created)
	v.UpdatedAt = parseTime(updated)
	return &v, nil
}

func encodeTestIDs(ids []uuid.UUID) (string, error) {
	if ids == nil {
		ids = []uuid.UUID{}
	}
	b, err := json.Marshal(ids)
	if err != nil {
		return "", fmt.Errorf("encode test_ids: %w", err)
	}
	return string(b), nil
}

func (r *visitRepo) Create(ctx context.Context, v *patient.Visit) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	ids, err := encodeTestIDs(v.TestIDs)
	if err != nil {
		return err
	}
	_, err = r.s.db.ExecContext(ctx, `
		INSERT INTO visits (id, patient_id, patient_name, visit_date, total_cost, test_ids, created_at, updated_at)
		VALUES (?,?,?,?,?,?,?,?)`,
		v.ID.String(), v.PatientID.String(), v.PatientName, fmtTime(v.VisitDate),
		nullDec(v.TotalCost), ids, now(), now())
	return err
}

func (r *visitRepo) GetByID(ctx context.Context, id uuid.UUID) (*patient.Visit, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return scanVisit(r.s.db.QueryRowContext(ctx,
		`SELECT `+visitCols+` FROM visits WHERE id = ?`, id.String()))
}

func (r *visitRepo) Update(ctx context.Context, v *patient.Visit) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	ids, err := encodeTestIDs(v.TestIDs)
	if err != nil {
		return err
	}
	_, err = r.s.db.ExecContext(ctx, `
		UPDATE visits SET patient_name=?, visit_date=?, total_cost=?, test_ids=?, updated_at=?
		WHERE id = ?`,
		v.PatientName, fmtTime(v.VisitDate), nullDec(v.TotalCost), ids, now(), v.ID.String())
	return err
}

func (r *visitRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	_, err := r.s.db.ExecContext(ctx, `DELETE FROM visits WHERE id = ?`, id.String())
	return err
}

func (r *visitRepo) List(ctx context.Context, f patient.VisitFilter, limit, offset int) ([]*patient.Visit, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	query := `SELECT ` + visitCols + ` FROM visits WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM visits WHERE 1=1`
	var args []any

	if f.Date != "" {
		query += ` AND DATE(visit_date) = ?`
		countQuery += ` AND DATE(visit_date) = ?`
		args = append(args, f.Date)
	}
	if f.PatientID != nil {
		query += ` AND patient_id = ?`
		countQuery += ` AND patient_id = ?`
		args = append(args, f.PatientID.String())
	}

	var total int
	if err := r.s.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += ` ORDER BY visit_date DESC, created_at DESC LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := r.s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*patient.Visit
	for rows.Next() {
		v, err := scanVisit(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, v)
	}
	return items, total, rows.Err()
}
