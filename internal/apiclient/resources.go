package apiclient

import (
	"context"
	"net/http"

	"institute-service/internal/announcement"
	"institute-service/internal/blog"
	"institute-service/internal/fee"
	"institute-service/internal/profile"
	"institute-service/internal/student"

	"github.com/google/uuid"
)

func (c *Client) Students() *Resource[student.Student, student.Request] {
	return newResource[student.Student, student.Request](c, "/api/students")
}

func (c *Client) FeePayments() *Resource[fee.View, fee.Request] {
	return newResource[fee.View, fee.Request](c, "/api/fee-payments")
}

func (c *Client) Announcements() *Resource[announcement.Announcement, announcement.Request] {
	return newResource[announcement.Announcement, announcement.Request](c, "/api/announcements")
}

func (c *Client) Events() *Resource[blog.Event, blog.EventRequest] {
	return newResource[blog.Event, blog.EventRequest](c, "/api/events")
}

func (c *Client) LiveClasses() *Resource[blog.LiveClass, blog.LiveClassRequest] {
	return newResource[blog.LiveClass, blog.LiveClassRequest](c, "/api/live-classes")
}

func (c *Client) Toppers() *Resource[blog.Topper, blog.TopperRequest] {
	return newResource[blog.Topper, blog.TopperRequest](c, "/api/toppers")
}

func (c *Client) Profile() *Single[profile.Profile, profile.UpdateRequest] {
	return &Single[profile.Profile, profile.UpdateRequest]{client: c, path: "/api/profile"}
}

func (c *Client) Institute() *Single[blog.InstituteInfo, blog.InstituteRequest] {
	return &Single[blog.InstituteInfo, blog.InstituteRequest]{client: c, path: "/api/institute"}
}

func (c *Client) StudentSummary() *Single[blog.StudentSummary, blog.SummaryRequest] {
	return &Single[blog.StudentSummary, blog.SummaryRequest]{client: c, path: "/api/student-summary"}
}

func (c *Client) Batches(ctx context.Context) ([]string, error) {
	var batches []string
	if err := c.do(ctx, http.MethodGet, "/api/students/batches", nil, nil, &batches); err != nil {
		return nil, err
	}
	return batches, nil
}

// SearchStudent finds one of the caller's students by code or name.
func (c *Client) SearchStudent(ctx context.Context, term string) (*student.Student, error) {
	var st student.Student
	if err := c.do(ctx, http.MethodGet, "/api/students/search", searchQuery(term), nil, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

// PublicSearch needs no session.
func (c *Client) PublicSearch(ctx context.Context, term string) (*student.PublicResult, error) {
	var result student.PublicResult
	if err := c.do(ctx, http.MethodGet, "/api/public/students/search", searchQuery(term), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) PendingFees(ctx context.Context) ([]student.PendingFee, error) {
	var rows []student.PendingFee
	if err := c.do(ctx, http.MethodGet, "/api/students/pending", nil, nil, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (c *Client) StudentWhatsAppLink(ctx context.Context, id uuid.UUID) (string, error) {
	var link student.LinkResponse
	if err := c.do(ctx, http.MethodGet, "/api/students/"+id.String()+"/whatsapp", nil, nil, &link); err != nil {
		return "", err
	}
	return link.URL, nil
}

func (c *Client) FeeStats(ctx context.Context) (*fee.Stats, error) {
	var stats fee.Stats
	if err := c.do(ctx, http.MethodGet, "/api/fee-payments/stats", nil, nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (c *Client) LatestAnnouncements(ctx context.Context) ([]announcement.Announcement, error) {
	var rows []announcement.Announcement
	if err := c.do(ctx, http.MethodGet, "/api/announcements/latest", nil, nil, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (c *Client) AnnouncementFeed(ctx context.Context) ([]announcement.Announcement, error) {
	var rows []announcement.Announcement
	if err := c.do(ctx, http.MethodGet, "/api/announcements/feed", nil, nil, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}
