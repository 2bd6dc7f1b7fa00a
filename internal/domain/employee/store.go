package employee

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"paysheet/internal/platform/crypto"
)

// Store persists employees. Tax IDs and bank account numbers go to the
// *_enc columns when the cipher is enabled and to the plain columns otherwise.
type Store struct {
	DB     *pgxpool.Pool
	Cipher *crypto.Cipher
}

func NewStore(db *pgxpool.Pool, cipher *crypto.Cipher) *Store {
	return &Store{DB: db, Cipher: cipher}
}

const employeeColumns = `id, external_id, name, COALESCE(email, ''), COALESCE(tax_id, ''), tax_id_enc,
       COALESCE(department, ''), COALESCE(position, ''), COALESCE(employment_type, ''),
       start_date, COALESCE(work_location, ''), COALESCE(bank_name, ''), COALESCE(bank_account, ''), bank_account_enc,
       COALESCE(street, ''), COALESCE(city, ''), COALESCE(country, ''),
       base_salary, food_allowance, communication_allowance, attendance_bonus, assiduity_bonus,
       created_at, updated_at`

func (s *Store) List(ctx context.Context) ([]Employee, error) {
	rows, err := s.DB.Query(ctx, "SELECT "+employeeColumns+" FROM employees ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var employees []Employee
	for rows.Next() {
		emp, err := s.scan(rows)
		if err != nil {
			return nil, err
		}
		employees = append(employees, emp)
	}
	return employees, rows.Err()
}

func (s *Store) Get(ctx context.Context, id string) (Employee, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Employee{}, ErrNotFound
	}
	emp, err := s.scan(s.DB.QueryRow(ctx, "SELECT "+employeeColumns+" FROM employees WHERE id = $1", id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Employee{}, ErrNotFound
	}
	return emp, err
}

func (s *Store) Exists(ctx context.Context, id string) (bool, error) {
	if _, err := uuid.Parse(id); err != nil {
		return false, nil
	}
	var count int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM employees WHERE id = $1", id).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

// ExternalIDMap maps the employee IDs printed on timesheets to internal IDs.
func (s *Store) ExternalIDMap(ctx context.Context) (map[string]string, error) {
	rows, err := s.DB.Query(ctx, "SELECT external_id, id FROM employees")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]string{}
	for rows.Next() {
		var externalID, id string
		if err := rows.Scan(&externalID, &id); err != nil {
			return nil, err
		}
		out[externalID] = id
	}
	return out, rows.Err()
}

func (s *Store) Create(ctx context.Context, emp Employee) (Employee, error) {
	if emp.ID == "" {
		emp.ID = uuid.NewString()
	}
	args, err := s.args(emp)
	if err != nil {
		return Employee{}, err
	}
	created, err := s.scan(s.DB.QueryRow(ctx, `
    INSERT INTO employees (id, external_id, name, email, tax_id, tax_id_enc, department, position, employment_type,
                           start_date, work_location, bank_name, bank_account, bank_account_enc, street, city, country,
                           base_salary, food_allowance, communication_allowance, attendance_bonus, assiduity_bonus)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22)
    RETURNING `+employeeColumns, args...))
	if isUniqueViolation(err) {
		return Employee{}, ErrDuplicateExternal
	}
	return created, err
}

func (s *Store) Update(ctx context.Context, emp Employee) (Employee, error) {
	if _, err := uuid.Parse(emp.ID); err != nil {
		return Employee{}, ErrNotFound
	}
	args, err := s.args(emp)
	if err != nil {
		return Employee{}, err
	}
	updated, err := s.scan(s.DB.QueryRow(ctx, `
    UPDATE employees
    SET external_id = $2, name = $3, email = $4, tax_id = $5, tax_id_enc = $6, department = $7, position = $8,
        employment_type = $9, start_date = $10, work_location = $11, bank_name = $12, bank_account = $13,
        bank_account_enc = $14, street = $15, city = $16, country = $17, base_salary = $18, food_allowance = $19,
        communication_allowance = $20, attendance_bonus = $21, assiduity_bonus = $22, updated_at = now()
    WHERE id = $1
    RETURNING `+employeeColumns, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return Employee{}, ErrNotFound
	}
	if isUniqueViolation(err) {
		return Employee{}, ErrDuplicateExternal
	}
	return updated, err
}

func (s *Store) args(emp Employee) ([]any, error) {
	var taxPlain, bankPlain any = emp.TaxID, emp.Bank.AccountNumber
	var taxEnc, bankEnc []byte
	if s.Cipher.Enabled() {
		var err error
		if taxEnc, err = s.Cipher.Seal(emp.TaxID); err != nil {
			return nil, fmt.Errorf("seal tax id: %w", err)
		}
		if bankEnc, err = s.Cipher.Seal(emp.Bank.AccountNumber); err != nil {
			return nil, fmt.Errorf("seal bank account: %w", err)
		}
		taxPlain, bankPlain = nil, nil
	}
	c := emp.Compensation
	return []any{
		emp.ID, emp.ExternalID, emp.Name, emp.Email, taxPlain, taxEnc, emp.Department, emp.Position,
		emp.EmploymentType, emp.StartDate, emp.WorkLocation, emp.Bank.BankName, bankPlain, bankEnc,
		emp.Address.Street, emp.Address.City, emp.Address.Country,
		c.BaseSalary, c.Allowances.Food, c.Allowances.Communication, c.Allowances.Attendance, c.Allowances.Assiduity,
	}, nil
}

func (s *Store) scan(row pgx.Row) (Employee, error) {
	var emp Employee
	var taxEnc, bankEnc []byte
	c := &emp.Compensation
	err := row.Scan(
		&emp.ID, &emp.ExternalID, &emp.Name, &emp.Email, &emp.TaxID, &taxEnc, &emp.Department, &emp.Position,
		&emp.EmploymentType, &emp.StartDate, &emp.WorkLocation, &emp.Bank.BankName, &emp.Bank.AccountNumber, &bankEnc,
		&emp.Address.Street, &emp.Address.City, &emp.Address.Country,
		&c.BaseSalary, &c.Allowances.Food, &c.Allowances.Communication, &c.Allowances.Attendance, &c.Allowances.Assiduity,
		&emp.CreatedAt, &emp.UpdatedAt,
	)
	if err != nil {
		return Employee{}, err
	}
	emp.TaxID = s.openField(taxEnc, emp.TaxID)
	emp.Bank.AccountNumber = s.openField(bankEnc, emp.Bank.AccountNumber)
	return emp, nil
}

// openField prefers the sealed value and keeps the plain column for rows
// written before encryption was turned on.
func (s *Store) openField(sealed []byte, plain string) string {
	if len(sealed) == 0 {
		return plain
	}
	value, err := s.Cipher.Open(sealed)
	if err != nil {
		slog.Warn("employee field decrypt failed", "err", err)
		return plain
	}
	return value
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
