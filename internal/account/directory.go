// Package account keeps the clients registered through the sign-up page and
// answers the simulated logins.
package account

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"database/sql"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/argon2"
	_ "modernc.org/sqlite"

	apperrors "github.com/pelusa-v/tidbid/internal/errors"
	"github.com/pelusa-v/tidbid/internal/forms"
	"github.com/pelusa-v/tidbid/internal/logger"
)

const schema = `
CREATE TABLE IF NOT EXISTS clients (
	id TEXT PRIMARY KEY,
	first_name TEXT NOT NULL,
	last_name TEXT NOT NULL,
	username TEXT NOT NULL,
	email TEXT NOT NULL UNIQUE COLLATE NOCASE,
	phone TEXT NOT NULL DEFAULT '',
	password_salt TEXT NOT NULL,
	password_hash TEXT NOT NULL,
	created_at TEXT NOT NULL
);
`

const (
	argonTime    = 1
	argonMemKB   = 64 * 1024
	argonThreads = 2
	argonKeyLen  = 32
	saltLen      = 16

	// GenericName is who a well-formed but unknown login signs in as.
	GenericName = "User"
	// DemoName is who the configured demo credentials sign in as.
	DemoName = "Demo User"
)

// Client is one registered client. The password hash never leaves the
// package.
type Client struct {
	ID        string    `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"createdAt"`
}

func (c Client) Name() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// usernameOf is the local part of an email, the default username.
func usernameOf(email string) string {
	if i := strings.IndexByte(email, '@'); i > 0 {
		return email[:i]
	}
	return email
}

// Credentials is the demo login table, email to password.
type Credentials map[string]string

// Directory stores registered clients in SQLite.
type Directory struct {
	db          *sql.DB
	demo        Credentials
	adminEmail  string
	adminSecret string
	now         func() time.Time
}

type Option func(*Directory)

func WithDemoCredentials(c Credentials) Option { return func(d *Directory) { d.demo = c } }

func WithAdmin(email, password string) Option {
	return func(d *Directory) {
		d.adminEmail = email
		d.adminSecret = password
	}
}

func WithClock(now func() time.Time) Option { return func(d *Directory) { d.now = now } }

// Open opens the directory database at dsn and creates the schema. An
// empty dsn or ":memory:" keeps everything in process memory.
func Open(dsn string, opts ...Option) (*Directory, error) {
	const op = apperrors.Op("account.Open")
	if dsn == "" {
		dsn = ":memory:"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, apperrors.StorageFailed(op, fmt.Errorf("sqlite open: %w", err))
	}
	// Every connection to ":memory:" is a separate database.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, apperrors.StorageFailed(op, fmt.Errorf("sqlite schema: %w", err))
	}
	d := &Directory{db: db, demo: Credentials{}, now: time.Now}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Close releases the database connection.
func (d *Directory) Close() error {
	if d.db == nil {
		return nil
	}
	err := d.db.Close()
	d.db = nil
	return err
}

// Register stores a validated registration. A second registration with the
// same email, in any letter case, is a conflict.
func (d *Directory) Register(ctx context.Context, r forms.Registration) (Client, error) {
	const op = apperrors.Op("account.Register")
	if errs := r.Validate(); !errs.Valid() {
		return Client{}, apperrors.E(op, apperrors.KindInvalid, "registration form has errors: "+strings.Join(errs.Fields(), ", "))
	}
	email := strings.ToLower(strings.TrimSpace(r.Email))
	return d.insert(ctx, Client{
		FirstName: strings.TrimSpace(r.FirstName),
		LastName:  strings.TrimSpace(r.LastName),
		Username:  usernameOf(email),
		Email:     email,
		Phone:     strings.TrimSpace(r.Phone),
	}, r.Password)
}

// RegisterLegacy stores a sign-up from the old JSON endpoint, which sent a
// full name and a username instead of the registration form.
func (d *Directory) RegisterLegacy(ctx context.Context, fullName, username, email, password string) (Client, error) {
	const op = apperrors.Op("account.RegisterLegacy")
	email = strings.ToLower(strings.TrimSpace(email))
	username = strings.TrimSpace(username)
	if !forms.ValidEmail(email) || password == "" {
		return Client{}, apperrors.E(op, apperrors.KindInvalid, "email and password are required")
	}
	if username == "" {
		username = usernameOf(email)
	}
	first, last, _ := strings.Cut(strings.TrimSpace(fullName), " ")
	return d.insert(ctx, Client{
		FirstName: first,
		LastName:  strings.TrimSpace(last),
		Username:  username,
		Email:     email,
	}, password)
}

func (d *Directory) insert(ctx context.Context, c Client, password string) (Client, error) {
	const op = apperrors.Op("account.Register")
	if _, ok, err := d.lookup(ctx, "email", c.Email); err != nil {
		return Client{}, err
	} else if ok {
		return Client{}, apperrors.ClientExists(c.Email)
	}

	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return Client{}, apperrors.StorageFailed(op, fmt.Errorf("salt: %w", err))
	}
	c.ID = uuid.NewString()
	c.CreatedAt = d.now().UTC()
	_, err := d.db.ExecContext(ctx,
		`INSERT INTO clients (id, first_name, last_name, username, email, phone, password_salt, password_hash, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.FirstName, c.LastName, c.Username, c.Email, c.Phone,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash(password, salt)),
		c.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return Client{}, apperrors.ClientExists(c.Email)
		}
		return Client{}, apperrors.StorageFailed(op, err)
	}
	logger.Component("account").Info("client registered", "id", c.ID)
	return c, nil
}

// Get returns the client registered under email.
func (d *Directory) Get(ctx context.Context, email string) (Client, error) {
	c, ok, err := d.lookup(ctx, "email", strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return Client{}, err
	}
	if !ok {
		return Client{}, apperrors.ClientNotFound(email)
	}
	return c.Client, nil
}

// likeEscaper makes a search query match literally inside a LIKE pattern.
var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// List returns registered clients, newest first. A non-empty query keeps
// clients whose name or email contains it, ignoring case.
func (d *Directory) List(ctx context.Context, query string) ([]Client, error) {
	const op = apperrors.Op("account.List")
	q := "%" + likeEscaper.Replace(strings.ToLower(strings.TrimSpace(query))) + "%"
	rows, err := d.db.QueryContext(ctx,
		`SELECT id, first_name, last_name, username, email, phone, created_at FROM clients
		 WHERE lower(first_name || ' ' || last_name) LIKE ? ESCAPE '\' OR lower(email) LIKE ? ESCAPE '\'
		 ORDER BY created_at DESC, rowid DESC`, q, q)
	if err != nil {
		return nil, apperrors.StorageFailed(op, err)
	}
	defer rows.Close()

	var out []Client
	for rows.Next() {
		var c Client
		var created string
		if err := rows.Scan(&c.ID, &c.FirstName, &c.LastName, &c.Username, &c.Email, &c.Phone, &created); err != nil {
			return nil, apperrors.StorageFailed(op, err)
		}
		c.CreatedAt, err = time.Parse(time.RFC3339Nano, created)
		if err != nil {
			return nil, apperrors.StorageFailed(op, fmt.Errorf("parse created_at %q: %w", created, err))
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.StorageFailed(op, err)
	}
	return out, nil
}

// Authenticate resolves a client login to a display name. Matching demo
// credentials sign in as the demo user and registered clients must give
// their own password. Any other well-formed login is accepted as the
// generic user.
func (d *Directory) Authenticate(ctx context.Context, l forms.ClientLogin) (string, error) {
	if !l.Validate().Valid() {
		return "", apperrors.InvalidCredentials()
	}
	email := strings.ToLower(strings.TrimSpace(l.Email))
	if pw, ok := d.demo[email]; ok && equal(pw, l.Password) {
		return DemoName, nil
	}

	rec, ok, err := d.lookup(ctx, "email", email)
	if err != nil {
		return "", err
	}
	if ok {
		if subtle.ConstantTimeCompare(hash(l.Password, rec.salt), rec.hash) != 1 {
			return "", apperrors.InvalidCredentials()
		}
		return rec.Name(), nil
	}
	return GenericName, nil
}

// AuthenticateUsername checks a legacy username login against registered
// clients only. Any client holding the username and password matches.
func (d *Directory) AuthenticateUsername(ctx context.Context, username, password string) (Client, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return Client{}, apperrors.InvalidCredentials()
	}
	recs, err := d.lookupAll(ctx, "username", username)
	if err != nil {
		return Client{}, err
	}
	for _, rec := range recs {
		if subtle.ConstantTimeCompare(hash(password, rec.salt), rec.hash) == 1 {
			return rec.Client, nil
		}
	}
	return Client{}, apperrors.InvalidCredentials()
}

// AuthenticateAdmin accepts only the configured admin account.
func (d *Directory) AuthenticateAdmin(l forms.AdminLogin) error {
	if !l.Validate().Valid() || d.adminEmail == "" {
		return apperrors.InvalidCredentials()
	}
	if !strings.EqualFold(strings.TrimSpace(l.Email), d.adminEmail) || !equal(l.Password, d.adminSecret) {
		return apperrors.InvalidCredentials()
	}
	return nil
}

type record struct {
	Client
	salt []byte
	hash []byte
}

// lookup finds the oldest client matching column, "email" or "username".
func (d *Directory) lookup(ctx context.Context, column, value string) (record, bool, error) {
	recs, err := d.lookupAll(ctx, column, value)
	if err != nil || len(recs) == 0 {
		return record{}, false, err
	}
	return recs[0], true, nil
}

// lookupAll returns every client matching column, oldest first. Usernames
// are not unique, so a username may match several clients.
func (d *Directory) lookupAll(ctx context.Context, column, value string) ([]record, error) {
	const op = apperrors.Op("account.Lookup")
	rows, err := d.db.QueryContext(ctx,
		`SELECT id, first_name, last_name, username, email, phone, password_salt, password_hash, created_at
		 FROM clients WHERE `+column+` = ? ORDER BY rowid`, value)
	if err != nil {
		return nil, apperrors.StorageFailed(op, err)
	}
	defer rows.Close()

	var out []record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, apperrors.StorageFailed(op, err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.StorageFailed(op, err)
	}
	return out, nil
}

func scanRecord(rows *sql.Rows) (record, error) {
	var rec record
	var salt, sum, created string
	if err := rows.Scan(&rec.ID, &rec.FirstName, &rec.LastName, &rec.Username, &rec.Email, &rec.Phone, &salt, &sum, &created); err != nil {
		return record{}, err
	}
	var err error
	if rec.salt, err = base64.RawStdEncoding.DecodeString(salt); err != nil {
		return record{}, fmt.Errorf("decode salt: %w", err)
	}
	if rec.hash, err = base64.RawStdEncoding.DecodeString(sum); err != nil {
		return record{}, fmt.Errorf("decode hash: %w", err)
	}
	if rec.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
		return record{}, fmt.Errorf("parse created_at %q: %w", created, err)
	}
	return rec, nil
}

func hash(password string, salt []byte) []byte {
	return argon2.IDKey([]byte(password), salt, argonTime, argonMemKB, argonThreads, argonKeyLen)
}

func equal(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
