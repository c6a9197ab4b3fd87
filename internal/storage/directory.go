package storage

import (
	"context"

	"github.com/werioliveira/card-management/internal/core"
)

// People

func (q *Queries) ListPeople(ctx context.Context, owner string) ([]core.Person, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT id, name, email, color, owner_id FROM people WHERE owner_id = ? ORDER BY name, id`, owner)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []core.Person
	for rows.Next() {
		var p core.Person
		if err := rows.Scan(&p.ID, &p.Name, &p.Email, &p.Color, &p.Owner); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (q *Queries) GetPerson(ctx context.Context, owner, id string) (core.Person, error) {
	var p core.Person
	err := q.db.QueryRowContext(ctx,
		`SELECT id, name, email, color, owner_id FROM people WHERE id = ? AND owner_id = ?`, id, owner).
		Scan(&p.ID, &p.Name, &p.Email, &p.Color, &p.Owner)
	return p, notFound(err)
}

func (q *Queries) InsertPerson(ctx context.Context, p core.Person) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO people (id, name, email, color, owner_id) VALUES (?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.Email, p.Color, p.Owner)
	return err
}

func (q *Queries) UpdatePerson(ctx context.Context, p core.Person) error {
	res, err := q.db.ExecContext(ctx,
		`UPDATE people SET name = ?, email = ?, color = ? WHERE id = ? AND owner_id = ?`,
		p.Name, p.Email, p.Color, p.ID, p.Owner)
	if err != nil {
		return err
	}
	return affected(res)
}

func (q *Queries) DeletePerson(ctx context.Context, owner, id string) error {
	res, err := q.db.ExecContext(ctx, `DELETE FROM people WHERE id = ? AND owner_id = ?`, id, owner)
	if err != nil {
		return err
	}
	return affected(res)
}

// Cards

const cardColumns = `id, name, last_digits, brand, limit_cents, closing_day, due_day, color, active, owner_id`

func scanCard(row rowScanner) (core.Card, error) {
	var c core.Card
	err := row.Scan(&c.ID, &c.Name, &c.LastDigits, &c.Brand, &c.Limit.Cents,
		&c.ClosingDay, &c.DueDay, &c.Color, &c.Active, &c.Owner)
	return c, err
}

func (q *Queries) ListCards(ctx context.Context, owner string) ([]core.Card, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+cardColumns+` FROM cards WHERE owner_id = ? ORDER BY name, id`, owner)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []core.Card
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (q *Queries) GetCard(ctx context.Context, owner, id string) (core.Card, error) {
	c, err := scanCard(q.db.QueryRowContext(ctx,
		`SELECT `+cardColumns+` FROM cards WHERE id = ? AND owner_id = ?`, id, owner))
	return c, notFound(err)
}

func (q *Queries) InsertCard(ctx context.Context, c core.Card) error {
	_, err := q.db.ExecContext(ctx, `INSERT INTO cards (`+cardColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.LastDigits, c.Brand, c.Limit.Cents, c.ClosingDay, c.DueDay, c.Color, c.Active, c.Owner)
	return err
}

func (q *Queries) UpdateCard(ctx context.Context, c core.Card) error {
	res, err := q.db.ExecContext(ctx, `UPDATE cards
SET name = ?, last_digits = ?, brand = ?, limit_cents = ?, closing_day = ?, due_day = ?, color = ?, active = ?
WHERE id = ? AND owner_id = ?`,
		c.Name, c.LastDigits, c.Brand, c.Limit.Cents, c.ClosingDay, c.DueDay, c.Color, c.Active, c.ID, c.Owner)
	if err != nil {
		return err
	}
	return affected(res)
}

func (q *Queries) DeleteCard(ctx context.Context, owner, id string) error {
	res, err := q.db.ExecContext(ctx, `DELETE FROM cards WHERE id = ? AND owner_id = ?`, id, owner)
	if err != nil {
		return err
	}
	return affected(res)
}

// Categories

func (q *Queries) ListCategories(ctx context.Context, owner string) ([]core.Category, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT id, name, icon, color, owner_id FROM categories WHERE owner_id = ? ORDER BY name, id`, owner)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []core.Category
	for rows.Next() {
		var c core.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Icon, &c.Color, &c.Owner); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (q *Queries) InsertCategory(ctx context.Context, c core.Category) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO categories (id, name, icon, color, owner_id) VALUES (?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.Icon, c.Color, c.Owner)
	return err
}

// InsertCategoryIgnore inserts c unless its id already exists and reports
// whether a row was written.
func (q *Queries) InsertCategoryIgnore(ctx context.Context, c core.Category) (bool, error) {
	res, err := q.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO categories (id, name, icon, color, owner_id) VALUES (?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.Icon, c.Color, c.Owner)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (q *Queries) UpdateCategory(ctx context.Context, c core.Category) error {
	res, err := q.db.ExecContext(ctx,
		`UPDATE categories SET name = ?, icon = ?, color = ? WHERE id = ? AND owner_id = ?`,
		c.Name, c.Icon, c.Color, c.ID, c.Owner)
	if err != nil {
		return err
	}
	return affected(res)
}

func (q *Queries) DeleteCategory(ctx context.Context, owner, id string) error {
	res, err := q.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ? AND owner_id = ?`, id, owner)
	if err != nil {
		return err
	}
	return affected(res)
}

// Users

func (q *Queries) CreateUser(ctx context.Context, u core.User) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO users (id, name, email, password_hash, created_at) VALUES (?, ?, ?, ?, ?)`,
		u.ID, u.Name, u.Email, u.PasswordHash, u.CreatedAt.UTC().Format(timeLayout))
	if isUniqueViolation(err) {
		return core.ErrDuplicateEmail
	}
	return err
}

func (q *Queries) GetUserByEmail(ctx context.Context, email string) (core.User, error) {
	var (
		u       core.User
		created string
	)
	err := q.db.QueryRowContext(ctx,
		`SELECT id, name, email, password_hash, created_at FROM users WHERE email = ?`, email).
		Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &created)
	if err != nil {
		return core.User{}, notFound(err)
	}
	u.CreatedAt, _ = parseTime(created)
	return u, nil
}
