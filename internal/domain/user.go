package domain

// Role of a user account.
type Role string

const (
	RoleAdmin  Role = "ADMIN"
	RoleWorker Role = "RADNIK"
)

// User is an account allowed to log in (table korisnik).
type User struct {
	ID           int64  `db:"id_korisnika"`
	FirstName    string `db:"ime"`
	LastName     string `db:"prezime"`
	Username     string `db:"korisnicko_ime"` // UNIQUE
	PasswordHash string `db:"lozinka"`        // bcrypt
	Role         Role   `db:"uloga"`
}
