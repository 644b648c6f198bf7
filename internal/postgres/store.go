// Package postgres is the PostgreSQL ledger store, built on pgx.
package postgres

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/khata-dev/khata/internal/ledger"
	"github.com/khata-dev/khata/internal/logger"
	"github.com/khata-dev/khata/internal/model"
)

//go:embed schema.sql
var schema string

var _ ledger.Store = (*Store)(nil)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store keeps the books in PostgreSQL. Voucher numbers come from a
// counter row that the allocating transaction holds locked until it
// commits or rolls back.
type Store struct {
	pool *pgxpool.Pool
	log  zerolog.Logger
}

// New wraps an existing pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool, log: logger.WithComponent("postgres")}
}

// Connect opens a pool for dsn and checks it is reachable.
func Connect(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return New(pool), nil
}

// Close releases the pool.
func (s *Store) Close() {
	s.pool.Close()
}

// Migrate creates the tables if they do not exist.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("applying schema: %w", err)
	}
	return nil
}

// SeedAccounts inserts accounts that are not present yet, all or none.
func (s *Store) SeedAccounts(ctx context.Context, accts []model.Account) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, a := range accts {
		if _, err := tx.Exec(ctx, insertAccountSQL+` ON CONFLICT (id) DO NOTHING`, accountArgs(a)...); err != nil {
			return fmt.Errorf("seeding account %d: %w", a.ID, err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing seed: %w", err)
	}
	s.log.Debug().Int("accounts", len(accts)).Msg("chart seeded")
	return nil
}

// InTx runs fn in a READ COMMITTED transaction.
func (s *Store) InTx(ctx context.Context, fn func(ledger.Tx) error) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(&pgTx{tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Accounts returns the chart ordered by id.
func (s *Store) Accounts(ctx context.Context) ([]model.Account, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, type, is_party, tax_number, opening_balance::text
		FROM accounts
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("querying accounts: %w", err)
	}
	defer rows.Close()

	var out []model.Account
	for rows.Next() {
		var a model.Account
		var typ, opening string
		if err := rows.Scan(&a.ID, &a.Name, &typ, &a.IsParty, &a.TaxNumber, &opening); err != nil {
			return nil, fmt.Errorf("scanning account: %w", err)
		}
		a.Type = model.AccountType(typ)
		if a.OpeningBalance, err = decimal.NewFromString(opening); err != nil {
			return nil, fmt.Errorf("parsing opening balance of %d: %w", a.ID, err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Voucher returns a voucher with its items, deleted or not.
func (s *Store) Voucher(ctx context.Context, id uuid.UUID) (model.Voucher, error) {
	return getVoucher(ctx, s.pool, id)
}

// Vouchers returns the vouchers matching f with their items.
func (s *Store) Vouchers(ctx context.Context, f model.VoucherFilter) ([]model.Voucher, error) {
	var where []string
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if !f.IncludeDeleted {
		where = append(where, "NOT deleted")
	}
	if f.Type != "" {
		where = append(where, "type = "+arg(string(f.Type)))
	}
	if f.From != nil {
		where = append(where, "date >= "+arg(model.Day(*f.From)))
	}
	if f.To != nil {
		where = append(where, "date <= "+arg(model.Day(*f.To)))
	}

	sql := voucherSelectSQL
	if len(where) > 0 {
		sql += " WHERE " + strings.Join(where, " AND ")
	}
	sql += " ORDER BY date DESC, number DESC"

	vs, err := queryVouchers(ctx, s.pool, sql, args...)
	if err != nil {
		return nil, err
	}
	if err := attachItems(ctx, s.pool, vs); err != nil {
		return nil, err
	}
	return vs, nil
}

// Entries returns entries of live vouchers matching f, ordered by date and
// creation.
func (s *Store) Entries(ctx context.Context, f model.EntryFilter) ([]model.LedgerEntry, error) {
	var from, to *time.Time
	if f.From != nil {
		d := model.Day(*f.From)
		from = &d
	}
	if f.To != nil {
		d := model.Day(*f.To)
		to = &d
	}
	return queryEntries(ctx, s.pool, `
		SELECT e.seq, e.voucher_id, e.account_id, e.date, e.debit::text, e.credit::text
		FROM ledger_entries e
		JOIN vouchers v ON v.id = e.voucher_id
		WHERE NOT v.deleted
		  AND ($1::integer = 0 OR e.account_id = $1)
		  AND ($2::date IS NULL OR e.date >= $2)
		  AND ($3::date IS NULL OR e.date <= $3)
		ORDER BY e.date, e.seq`, f.AccountID, from, to)
}

// VoucherEntries returns one voucher's entries, or none if it is deleted.
func (s *Store) VoucherEntries(ctx context.Context, id uuid.UUID) ([]model.LedgerEntry, error) {
	v, err := getVoucher(ctx, s.pool, id)
	if err != nil {
		return nil, err
	}
	if v.Deleted {
		return nil, nil
	}
	return queryEntries(ctx, s.pool, `
		SELECT seq, voucher_id, account_id, date, debit::text, credit::text
		FROM ledger_entries
		WHERE voucher_id = $1
		ORDER BY seq`, id)
}

// pgTx is the write side of a Store transaction.
type pgTx struct {
	tx pgx.Tx
}

// NextVoucherSeq bumps the per-type counter. The upsert row-locks the
// counter, so a concurrent allocation waits for this transaction to end.
func (t *pgTx) NextVoucherSeq(ctx context.Context, vt model.VoucherType) (int, error) {
	var seq int
	err := t.tx.QueryRow(ctx, `
		INSERT INTO voucher_sequences (voucher_type, last_seq)
		VALUES ($1, 1)
		ON CONFLICT (voucher_type) DO UPDATE SET last_seq = voucher_sequences.last_seq + 1
		RETURNING last_seq`, string(vt)).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("bumping %s counter: %w", vt, err)
	}
	return seq, nil
}

func (t *pgTx) InsertVoucher(ctx context.Context, v model.Voucher, entries []model.LedgerEntry) ([]model.LedgerEntry, error) {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO vouchers (id, type, number, date, party_id, narration, reference, total_amount, deleted, deleted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8::numeric, $9, $10)`,
		v.ID.String(), string(v.Type), v.Number, model.Day(v.Date), nullableID(v.PartyID),
		v.Narration, v.Reference, v.TotalAmount.String(), v.Deleted, v.DeletedAt)
	if err != nil {
		if isConstraintViolation(err, referenceIndex) {
			return nil, fmt.Errorf("%w: %s", model.ErrDuplicateReference, v.Reference)
		}
		return nil, fmt.Errorf("inserting voucher: %w", err)
	}

	for i, it := range v.Items {
		_, err := t.tx.Exec(ctx, `
			INSERT INTO voucher_items (voucher_id, line, description, quantity, rate, amount, tax_rate, tax_amount, total)
			VALUES ($1, $2, $3, $4::numeric, $5::numeric, $6::numeric, $7::numeric, $8::numeric, $9::numeric)`,
			v.ID.String(), i+1, it.Description, it.Quantity.String(), it.Rate.String(), it.Amount.String(),
			it.TaxRate.String(), it.TaxAmount.String(), it.Total.String())
		if err != nil {
			return nil, fmt.Errorf("inserting item %d: %w", i+1, err)
		}
	}

	out := make([]model.LedgerEntry, len(entries))
	for i, e := range entries {
		e.VoucherID = v.ID
		err := t.tx.QueryRow(ctx, `
			INSERT INTO ledger_entries (voucher_id, account_id, date, debit, credit)
			VALUES ($1, $2, $3, $4::numeric, $5::numeric)
			RETURNING seq`,
			v.ID.String(), e.AccountID, model.Day(e.Date), e.Debit.String(), e.Credit.String()).Scan(&e.Seq)
		if err != nil {
			return nil, fmt.Errorf("inserting entry for account %d: %w", e.AccountID, err)
		}
		out[i] = e
	}
	return out, nil
}

func (t *pgTx) Voucher(ctx context.Context, id uuid.UUID) (model.Voucher, error) {
	return getVoucher(ctx, t.tx, id)
}

func (t *pgTx) MarkDeleted(ctx context.Context, id uuid.UUID, at time.Time) error {
	tag, err := t.tx.Exec(ctx, `UPDATE vouchers SET deleted = true, deleted_at = $2 WHERE id = $1`, id.String(), at.UTC())
	if err != nil {
		return fmt.Errorf("deleting voucher: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", model.ErrVoucherNotFound, id)
	}
	return nil
}

func (t *pgTx) InsertAccount(ctx context.Context, a model.Account) error {
	if _, err := t.tx.Exec(ctx, insertAccountSQL, accountArgs(a)...); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %d", model.ErrDuplicateAccount, a.ID)
		}
		return fmt.Errorf("inserting account: %w", err)
	}
	return nil
}

const insertAccountSQL = `
	INSERT INTO accounts (id, name, type, is_party, tax_number, opening_balance)
	VALUES ($1, $2, $3, $4, $5, $6::numeric)`

func accountArgs(a model.Account) []any {
	return []any{a.ID, a.Name, string(a.Type), a.IsParty, a.TaxNumber, a.OpeningBalance.String()}
}

const voucherSelectSQL = `
	SELECT id, type, number, date, COALESCE(party_id, 0), narration, reference, total_amount::text, deleted, deleted_at
	FROM vouchers`

func getVoucher(ctx context.Context, q querier, id uuid.UUID) (model.Voucher, error) {
	vs, err := queryVouchers(ctx, q, voucherSelectSQL+" WHERE id = $1", id.String())
	if err != nil {
		return model.Voucher{}, err
	}
	if len(vs) == 0 {
		return model.Voucher{}, fmt.Errorf("%w: %s", model.ErrVoucherNotFound, id)
	}
	if err := attachItems(ctx, q, vs); err != nil {
		return model.Voucher{}, err
	}
	return vs[0], nil
}

func queryVouchers(ctx context.Context, q querier, sql string, args ...any) ([]model.Voucher, error) {
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("querying vouchers: %w", err)
	}
	defer rows.Close()

	var out []model.Voucher
	for rows.Next() {
		var v model.Voucher
		var typ, total string
		if err := rows.Scan(&v.ID, &typ, &v.Number, &v.Date, &v.PartyID, &v.Narration, &v.Reference, &total, &v.Deleted, &v.DeletedAt); err != nil {
			return nil, fmt.Errorf("scanning voucher: %w", err)
		}
		v.Type = model.VoucherType(typ)
		v.Date = model.Day(v.Date)
		if v.TotalAmount, err = decimal.NewFromString(total); err != nil {
			return nil, fmt.Errorf("parsing total of %s: %w", v.Number, err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// attachItems loads the item lines of every voucher in vs in one query.
func attachItems(ctx context.Context, q querier, vs []model.Voucher) error {
	if len(vs) == 0 {
		return nil
	}
	ids := make([]string, len(vs))
	index := make(map[uuid.UUID]int, len(vs))
	for i, v := range vs {
		ids[i] = v.ID.String()
		index[v.ID] = i
	}

	rows, err := q.Query(ctx, `
		SELECT voucher_id, description, quantity::text, rate::text, amount::text, tax_rate::text, tax_amount::text, total::text
		FROM voucher_items
		WHERE voucher_id = ANY($1::uuid[])
		ORDER BY voucher_id, line`, ids)
	if err != nil {
		return fmt.Errorf("querying voucher items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var vid uuid.UUID
		var it model.VoucherItem
		nums := make([]string, 6)
		if err := rows.Scan(&vid, &it.Description, &nums[0], &nums[1], &nums[2], &nums[3], &nums[4], &nums[5]); err != nil {
			return fmt.Errorf("scanning voucher item: %w", err)
		}
		parsed, err := parseDecimals(nums)
		if err != nil {
			return fmt.Errorf("voucher item of %s: %w", vid, err)
		}
		it.Quantity, it.Rate, it.Amount, it.TaxRate, it.TaxAmount, it.Total = parsed[0], parsed[1], parsed[2], parsed[3], parsed[4], parsed[5]
		i := index[vid]
		vs[i].Items = append(vs[i].Items, it)
	}
	return rows.Err()
}

func queryEntries(ctx context.Context, q querier, sql string, args ...any) ([]model.LedgerEntry, error) {
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("querying entries: %w", err)
	}
	defer rows.Close()

	var out []model.LedgerEntry
	for rows.Next() {
		var e model.LedgerEntry
		var debit, credit string
		if err := rows.Scan(&e.Seq, &e.VoucherID, &e.AccountID, &e.Date, &debit, &credit); err != nil {
			return nil, fmt.Errorf("scanning entry: %w", err)
		}
		parsed, err := parseDecimals([]string{debit, credit})
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", e.Seq, err)
		}
		e.Debit, e.Credit = parsed[0], parsed[1]
		e.Date = model.Day(e.Date)
		out = append(out, e)
	}
	return out, rows.Err()
}

func parseDecimals(in []string) ([]decimal.Decimal, error) {
	out := make([]decimal.Decimal, len(in))
	for i, s := range in {
		d, err := decimal.NewFromString(s)
		if err != nil {
			return nil, fmt.Errorf("parsing %q: %w", s, err)
		}
		out[i] = d
	}
	return out, nil
}

func nullableID(id int) *int {
	if id == 0 {
		return nil
	}
	return &id
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// referenceIndex is the partial unique index over active voucher references.
const referenceIndex = "vouchers_reference"

func isConstraintViolation(err error, name string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == name
}
