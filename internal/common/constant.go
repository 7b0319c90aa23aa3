package common

// DefaultLicense is the license tag applied when the user does not pick one.
const DefaultLicense = "All Rights Reserved"

// DefaultEmbedLimitBytes is the soft per-document ceiling for embedded
// payloads. Matches the 1 MiB document limit of the managed stores this
// client is pointed at.
const DefaultEmbedLimitBytes = 1 << 20

// PasswordCharset is the alphabet used for generated per-file access
// passwords.
const PasswordCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789!@#$%^&*"
