package store

import (
	"context"

	"clinic-api/internal/model"
)

func (s *Store) CreatePatient(ctx context.Context, p *model.Patient) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO patients (id, first_name, last_name, phone) VALUES ($1,$2,$3,$4)`,
		p.ID, p.FirstName, p.LastName, p.Phone,
	)
	return err
}

func (s *Store) FindPatientByID(ctx context.Context, id string) (*model.Patient, error) {
	p := &model.Patient{}
	err := s.pool.QueryRow(ctx,
		`SELECT id, first_name, last_name, phone FROM patients WHERE id = $1`, id,
	).Scan(&p.ID, &p.FirstName, &p.LastName, &p.Phone)
	if noRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}
