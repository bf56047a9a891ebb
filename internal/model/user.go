package model

import "time"

// User represents an application user record as stored in the `users`
// table.  The PasswordHash column is named `password` in the schema for
// compatibility with the original database file but always holds a bcrypt
// digest, never a plain password.  Handlers expose users through separate
// response types so the hash and admin flag never leave the server.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Name         – display name (optional, may be empty).
//  Email        – unique email address.
//  PasswordHash – bcrypt hashed password.
//  IsAdmin      – stored flag; no route consumes it.
//  CreatedAt    – timestamp of creation.
type User struct {
    ID           int64     // users.id
    Name         string    // users.name
    Email        string    // users.email
    PasswordHash string    // users.password
    IsAdmin      bool      // users.is_admin
    CreatedAt    time.Time // users.created_at
}
