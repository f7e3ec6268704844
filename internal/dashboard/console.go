package dashboard

import (
	"context"

	"institute-service/internal/announcement"
	"institute-service/internal/apiclient"
	"institute-service/internal/blog"
	"institute-service/internal/fee"
	"institute-service/internal/listing"
	"institute-service/internal/student"
)

// StudentFields match the students screen search box and the server's student.SearchColumns.
var StudentFields = []listing.Field[student.Student]{
	func(s student.Student) string { return s.Name },
	func(s student.Student) string { return s.StudentID },
	func(s student.Student) string { return s.Email },
	func(s student.Student) string { return s.Batch },
}

var AnnouncementFields = []listing.Field[announcement.Announcement]{
	func(a announcement.Announcement) string { return a.Title },
	func(a announcement.Announcement) string { return a.Content },
	func(a announcement.Announcement) string { return a.Batch },
}

// Console wires every screen of the operator console to one API client and one session.
type Console struct {
	Client *apiclient.Client
	Guard  *Guard
	Notify Notifier

	Students      *Screen[student.Student]
	FeePayments   *Screen[fee.View]
	Announcements *Screen[announcement.Announcement]
	Events        *Screen[blog.Event]
	LiveClasses   *Screen[blog.LiveClass]
	Toppers       *Screen[blog.Topper]
	Pending       *Screen[student.PendingFee]
}

func NewConsole(client *apiclient.Client, notify Notifier) *Console {
	guard := NewGuard(client)
	return &Console{
		Client:        client,
		Guard:         guard,
		Notify:        notify,
		Students:      NewScreen("students", guard, client.Students().List, notify, StudentFields...),
		FeePayments:   NewScreen("fee payments", guard, client.FeePayments().List, notify, fee.FilterFields...),
		Announcements: NewScreen("announcements", guard, client.Announcements().List, notify, AnnouncementFields...),
		Events:        NewScreen("events", guard, client.Events().List, notify).WithCap(blog.MaxEvents),
		LiveClasses:   NewScreen("live classes", guard, client.LiveClasses().List, notify),
		Toppers:       NewScreen("toppers", guard, client.Toppers().List, notify).WithCap(blog.MaxToppers),
		Pending:       NewScreen("pending fees", guard, client.PendingFees, notify),
	}
}

// SignIn logs in and activates the session.
func (c *Console) SignIn(ctx context.Context, email, password string) error {
	if _, err := c.Client.Login(ctx, email, password); err != nil {
		c.Notify.Notify(failure(describe(err, "Login failed")))
		return err
	}
	_, err := c.Guard.Activate(ctx)
	return err
}

// SignOut ends the session on the server and locally. Local state is cleared even if the server call fails.
func (c *Console) SignOut(ctx context.Context) error {
	err := c.Client.Logout(ctx)
	c.Guard.Terminate(ReasonSignedOut)
	return err
}

// Recovery starts a fresh forgot-password dialog.
func (c *Console) Recovery() *Recovery {
	return NewRecovery(c.Client, c.Notify)
}
