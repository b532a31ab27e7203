package tables

// CrateID identifies a row in the crates table.
type CrateID uint64

// VersionID identifies a row in the versions table.
type VersionID uint64

// UserID identifies a row in the users table.
type UserID uint64

// TeamID identifies a row in the teams table.
type TeamID uint64

// CategoryID identifies a row in the categories table.
type CategoryID uint64

// KeywordID identifies a row in the keywords table.
type KeywordID uint64
