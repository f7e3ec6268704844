package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"golang.org/x/term"

	"institute-service/internal/announcement"
	"institute-service/internal/apiclient"
	"institute-service/internal/dashboard"
	"institute-service/internal/student"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	client  *apiclient.Client
	console *dashboard.Console
	session sessionFile
	in      *bufio.Reader
	out     io.Writer
}

func newCommandLine(apiURL, sessionPath string, in io.Reader, out io.Writer) *commandLine {
	client := apiclient.NewClient(apiURL)
	notify := dashboard.NotifierFunc(func(n dashboard.Notice) {
		fmt.Fprintf(out, "%s: %s\n", n.Title, n.Message)
	})
	return &commandLine{
		client:  client,
		console: dashboard.NewConsole(client, notify),
		session: sessionFile(sessionPath),
		in:      bufio.NewReader(in),
		out:     out,
	}
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		usage()
		return errHelp
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	stored, err := cli.session.load()
	if err != nil {
		return err
	}
	cli.client.SetSession(stored)

	cmd, rest := args[1], args[2:]
	switch cmd {
	case "login":
		return cli.login(ctx, rest)
	case "recover":
		return cli.recover(ctx, rest)
	case "lookup":
		return cli.lookup(ctx, rest)
	case "help", "-h", "--help":
		usage()
		return errHelp
	}

	if _, err := cli.console.Guard.Activate(ctx); err != nil {
		if errors.Is(err, dashboard.ErrNoSession) {
			_ = cli.session.save(nil)
			return errors.New("not signed in, run: coachctl login -email EMAIL")
		}
		return err
	}

	switch cmd {
	case "logout":
		err := cli.console.SignOut(ctx)
		if saveErr := cli.session.save(nil); saveErr != nil {
			return saveErr
		}
		return err
	case "whoami":
		return cli.whoami()
	case "students":
		return cli.students(ctx, rest)
	case "student-add":
		return cli.addStudent(ctx, rest)
	case "pending":
		return cli.pending(ctx)
	case "fees":
		return cli.fees(ctx, rest)
	case "announce":
		return cli.announce(ctx, rest)
	case "events":
		return cli.events(ctx)
	case "toppers":
		return cli.toppers(ctx)
	case "classes":
		return cli.classes(ctx)
	default:
		usage()
		return errHelp
	}
}

func (cli *commandLine) login(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	email := fs.String("email", "", "The account email. The password will be prompted next.")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" {
		fs.Usage()
		return errHelp
	}
	pwd, err := cli.readPassword("Enter password:")
	if err != nil {
		return err
	}
	if err := cli.console.SignIn(ctx, *email, pwd); err != nil {
		return err
	}
	if err := cli.session.save(cli.client.Session()); err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "Signed in as %s\n", *email)
	return nil
}

func (cli *commandLine) recover(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("recover", flag.ContinueOnError)
	email := fs.String("email", "", "The account email the code is sent to.")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" {
		fs.Usage()
		return errHelp
	}

	flow := cli.console.Recovery()
	if err := flow.SubmitEmail(ctx, *email); err != nil {
		return err
	}
	for flow.Step() != dashboard.Done {
		code, err := cli.prompt("Enter the 6-digit code (or 'back' to use a different email):")
		if err != nil {
			return err
		}
		if code == "back" {
			flow.UseDifferentEmail()
			next, err := cli.prompt("Email:")
			if err != nil {
				return err
			}
			if err := flow.SubmitEmail(ctx, next); err != nil {
				return err
			}
			continue
		}
		pwd, err := cli.readPassword("New password:")
		if err != nil {
			return err
		}
		confirm, err := cli.readPassword("Confirm password:")
		if err != nil {
			return err
		}
		if err := flow.SubmitCode(ctx, code, pwd, confirm); err != nil {
			var apiErr *apiclient.APIError
			if errors.As(err, &apiErr) && apiErr.Status >= 500 {
				return err
			}
		}
	}
	fmt.Fprintln(cli.out, "Sign in with your new password: coachctl login -email", flow.Email())
	return nil
}

func (cli *commandLine) whoami() error {
	p := cli.console.Guard.Principal()
	if p == nil {
		return dashboard.ErrNoSession
	}
	fmt.Fprintf(cli.out, "%s (session expires %s)\n", p.Email, p.ExpiresAt.Local().Format(time.RFC822))
	return nil
}

func (cli *commandLine) students(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("students", flag.ContinueOnError)
	q := fs.String("q", "", "Filter by name, student ID, email, phone or batch.")
	if err := fs.Parse(args); err != nil {
		return err
	}
	screen := cli.console.Students
	if err := screen.Load(ctx); err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cli.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tBATCH\tFEE\tPAID\tSTATUS")
	for _, s := range screen.Filter(*q) {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%.2f\t%.2f\t%s\n", s.StudentID, s.Name, s.Batch, s.FeeAmount, s.FeePaid, s.Status)
	}
	return tw.Flush()
}

func (cli *commandLine) addStudent(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("student-add", flag.ContinueOnError)
	name := fs.String("name", "", "Student name.")
	batch := fs.String("batch", "", "Batch.")
	phone := fs.String("phone", "", "Contact number.")
	feeAmount := fs.Float64("fee", 0, "Total fee.")
	feePaid := fs.Float64("paid", 0, "Amount already paid.")
	if err := fs.Parse(args); err != nil {
		return err
	}

	form := dashboard.NewForm(cli.console.Notify, dashboard.Required[student.Request]{
		Name:  "Name",
		Value: func(r student.Request) string { return r.Name },
	})
	form.Seed(student.Request{Name: *name, Batch: *batch, Phone: *phone, FeeAmount: feeAmount, FeePaid: feePaid})

	var created *student.Student
	err := dashboard.Create(ctx, cli.console.Students, form, func(ctx context.Context, r student.Request) error {
		s, err := cli.client.Students().Create(ctx, r)
		created = s
		return err
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "Added %s %s\n", created.StudentID, created.Name)
	return nil
}

func (cli *commandLine) pending(ctx context.Context) error {
	screen := cli.console.Pending
	if err := screen.Load(ctx); err != nil {
		return err
	}
	tw := tabwriter.NewWriter(cli.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tBATCH\tPENDING\tPAID%")
	for _, p := range screen.Rows() {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%.2f\t%d%%\n", p.StudentID, p.Name, p.Batch, p.Pending, p.PaidPercent)
	}
	return tw.Flush()
}

func (cli *commandLine) fees(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("fees", flag.ContinueOnError)
	q := fs.String("q", "", "Filter by student name or ID.")
	if err := fs.Parse(args); err != nil {
		return err
	}
	screen := cli.console.FeePayments
	if err := screen.Load(ctx); err != nil {
		return err
	}
	stats, err := cli.client.FeeStats(ctx)
	if err != nil {
		return cli.console.Guard.Observe(err)
	}

	tw := tabwriter.NewWriter(cli.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "STUDENT\tNAME\tAMOUNT\tMONTH\tMETHOD")
	for _, p := range screen.Filter(*q) {
		fmt.Fprintf(tw, "%s\t%s\t%.2f\t%02d/%d\t%s\n", p.StudentCode, p.StudentName, p.AmountPaid, p.Month, p.Year, p.PaymentMethod)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "Collected %.2f total, %.2f this month, %d payments\n", stats.TotalCollected, stats.ThisMonth, stats.PaymentCount)
	return nil
}

func (cli *commandLine) announce(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("announce", flag.ContinueOnError)
	title := fs.String("title", "", "Title.")
	content := fs.String("content", "", "Message body.")
	batch := fs.String("batch", "", "Target batch, empty for everyone.")
	if err := fs.Parse(args); err != nil {
		return err
	}
	form := dashboard.NewForm(cli.console.Notify,
		dashboard.Required[announcement.Request]{Name: "Title", Value: func(r announcement.Request) string { return r.Title }},
		dashboard.Required[announcement.Request]{Name: "Content", Value: func(r announcement.Request) string { return r.Content }},
	)
	form.Seed(announcement.Request{Title: *title, Content: *content, Batch: *batch})
	return dashboard.Create(ctx, cli.console.Announcements, form, func(ctx context.Context, r announcement.Request) error {
		_, err := cli.client.Announcements().Create(ctx, r)
		return err
	})
}

func (cli *commandLine) events(ctx context.Context) error {
	screen := cli.console.Events
	if err := screen.Load(ctx); err != nil {
		return err
	}
	for _, e := range screen.Rows() {
		fmt.Fprintf(cli.out, "%s  %s\n", e.Title, e.Description)
	}
	if !screen.CanCreate() {
		fmt.Fprintln(cli.out, "Event limit reached, delete one to add more")
	}
	return nil
}

func (cli *commandLine) toppers(ctx context.Context) error {
	screen := cli.console.Toppers
	if err := screen.Load(ctx); err != nil {
		return err
	}
	for _, t := range screen.Rows() {
		fmt.Fprintf(cli.out, "%s  class %s  %s\n", t.Name, t.Class, t.Marks)
	}
	return nil
}

func (cli *commandLine) classes(ctx context.Context) error {
	screen := cli.console.LiveClasses
	if err := screen.Load(ctx); err != nil {
		return err
	}
	for _, c := range screen.Rows() {
		fmt.Fprintf(cli.out, "%s  %s  %s  %s  %.2f\n", c.StartDate.Format(time.DateOnly), c.ClassName, c.Subject, c.Timing, c.Fee)
	}
	return nil
}

func (cli *commandLine) lookup(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("lookup", flag.ContinueOnError)
	q := fs.String("q", "", "Student ID or name.")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if strings.TrimSpace(*q) == "" {
		fs.Usage()
		return errHelp
	}
	res, err := cli.client.PublicSearch(ctx, *q)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "%s %s (%s) %s, paid %.2f of %.2f\n", res.StudentID, res.Name, res.Batch, res.Status, res.FeePaid, res.FeeAmount)
	return nil
}

func (cli *commandLine) prompt(label string) (string, error) {
	fmt.Fprint(cli.out, label+" ")
	line, err := cli.in.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (cli *commandLine) readPassword(label string) (string, error) {
	fmt.Fprint(cli.out, label)
	pwd, err := readPasswordFunc(int(syscall.Stdin))
	fmt.Fprintln(cli.out)
	if err != nil {
		return "", err
	}
	return string(pwd), nil
}
