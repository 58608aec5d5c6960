// Package pgstore implements [otpAuth.UserStore] on PostgreSQL through pgx.
//
// Email uniqueness is enforced by a UNIQUE constraint and Update locks the
// row with SELECT ... FOR UPDATE for the duration of the mutation. The schema
// ships as embedded goose migrations; run [Migrate] before first use.
package pgstore
