// Package schema lists every table of the service and the statements bun cannot derive from models.
package schema

import (
	"institute-service/internal/announcement"
	"institute-service/internal/auth"
	"institute-service/internal/blog"
	"institute-service/internal/fee"
	"institute-service/internal/profile"
	"institute-service/internal/recovery"
	"institute-service/internal/student"
)

// Models are created in order, so referenced tables come first.
func Models() []any {
	return []any{
		(*auth.Account)(nil),
		(*auth.RefreshToken)(nil),
		(*recovery.Code)(nil),
		(*profile.Profile)(nil),
		(*student.Student)(nil),
		(*fee.Payment)(nil),
		(*announcement.Announcement)(nil),
		(*blog.Event)(nil),
		(*blog.LiveClass)(nil),
		(*blog.Topper)(nil),
		(*blog.InstituteInfo)(nil),
		(*blog.StudentSummary)(nil),
	}
}

// Statements are idempotent and run after the tables exist.
func Statements() []string {
	return []string{
		`CREATE SEQUENCE IF NOT EXISTS ` + student.CodeSequence,
		`CREATE UNIQUE INDEX IF NOT EXISTS students_student_id_key ON students (student_id)`,
		`CREATE INDEX IF NOT EXISTS students_user_id_created_at_idx ON students (user_id, created_at DESC)`,
		`ALTER TABLE fee_payments DROP CONSTRAINT IF EXISTS fee_payments_student_id_fkey`,
		`ALTER TABLE fee_payments ADD CONSTRAINT fee_payments_student_id_fkey
			FOREIGN KEY (student_id) REFERENCES students (id) ON DELETE CASCADE`,
		`CREATE INDEX IF NOT EXISTS fee_payments_user_id_idx ON fee_payments (user_id, year DESC, month DESC)`,
		`CREATE INDEX IF NOT EXISTS announcements_user_id_created_at_idx ON announcements (user_id, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS events_user_id_idx ON events (user_id)`,
		`CREATE INDEX IF NOT EXISTS live_classes_user_id_idx ON live_classes (user_id, start_date)`,
		`CREATE INDEX IF NOT EXISTS topper_students_user_id_idx ON topper_students (user_id)`,
		`CREATE INDEX IF NOT EXISTS refresh_tokens_account_id_idx ON refresh_tokens (account_id)`,
		`ALTER TABLE recovery_codes ADD COLUMN IF NOT EXISTS verified_at timestamptz`,
		`CREATE INDEX IF NOT EXISTS recovery_codes_account_id_idx ON recovery_codes (account_id)`,
	}
}

// Tables are truncated together by tests.
func Tables() []string {
	return []string{
		"accounts",
		"refresh_tokens",
		"recovery_codes",
		"profiles",
		"students",
		"fee_payments",
		"announcements",
		"events",
		"live_classes",
		"topper_students",
		"institute_info",
		"student_summary",
	}
}
