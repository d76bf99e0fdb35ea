package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"go.uber.org/zap"
)

// Console is the interactive text-menu front end. It reads choices and
// fields line by line and calls the same library service as the web UI.
type Console struct {
	logger  *zap.Logger
	library LibraryServiceProvider
	in      *bufio.Scanner
	out     io.Writer
}

// NewConsole provides a ready to use console front end.
func NewConsole(logger *zap.Logger, library LibraryServiceProvider, in io.Reader, out io.Writer) *Console {
	return &Console{
		logger:  logger,
		library: library,
		in:      bufio.NewScanner(in),
		out:     out,
	}
}

// Run loops on the main menu until the exit command or end of input.
func (c *Console) Run(ctx context.Context) error {
	for {
		fmt.Fprintln(c.out, strings.Repeat("=", 50))
		fmt.Fprintln(c.out, "Library Desk")
		fmt.Fprintln(c.out, strings.Repeat("=", 50))
		fmt.Fprintln(c.out, "1. Add Book")
		fmt.Fprintln(c.out, "2. List Books")
		fmt.Fprintln(c.out, "3. Add Member")
		fmt.Fprintln(c.out, "4. List Members")
		fmt.Fprintln(c.out, "5. Borrow Book")
		fmt.Fprintln(c.out, "6. Return Book")
		fmt.Fprintln(c.out, "0. Exit")
		fmt.Fprintln(c.out, strings.Repeat("-", 50))

		choice, ok := c.prompt("Choose an action: ")
		if !ok {
			return nil
		}

		switch choice {
		case "1":
			c.addBook(ctx)
		case "2":
			c.listBooks(ctx)
		case "3":
			c.addMember(ctx)
		case "4":
			c.listMembers(ctx)
		case "5":
			c.borrow(ctx)
		case "6":
			c.returnBook(ctx)
		case "0":
			fmt.Fprintln(c.out, "Goodbye!")
			return nil
		default:
			fmt.Fprintln(c.out, "Unknown choice. Pick a number from the menu.")
		}
	}
}

// prompt prints a label and reads one trimmed line. The second result
// is false once the input is exhausted.
func (c *Console) prompt(label string) (string, bool) {
	fmt.Fprint(c.out, label)
	if !c.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(c.in.Text()), true
}

func (c *Console) addBook(ctx context.Context) {
	title, ok := c.prompt("Enter book title: ")
	if !ok {
		return
	}
	author, ok := c.prompt("Enter book author: ")
	if !ok {
		return
	}
	raw, ok := c.prompt("How many copies: ")
	if !ok {
		return
	}
	copies, err := strconv.Atoi(raw)
	if err != nil || copies < 0 {
		fmt.Fprintln(c.out, c.errorMessage(ErrInvalidCopies))
		return
	}

	book, err := c.library.AddBook(ctx, title, author, copies)
	if err != nil {
		fmt.Fprintln(c.out, c.errorMessage(err))
		return
	}
	fmt.Fprintf(c.out, "Book added: %s %s\n", book.ID, book.Title)
}

func (c *Console) listBooks(ctx context.Context) {
	books, err := c.library.ListBooks(ctx)
	if err != nil {
		fmt.Fprintln(c.out, c.errorMessage(err))
		return
	}
	if len(books) == 0 {
		fmt.Fprintln(c.out, "No books found.")
		return
	}
	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tAUTHOR\tAVAILABLE/TOTAL\tADDED ON")
	for _, b := range books {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d/%d\t%s\n", b.ID, b.Title, b.Author, b.AvailableCopies, b.TotalCopies, b.AddedOn)
	}
	tw.Flush()
	fmt.Fprintln(c.out)
}

func (c *Console) addMember(ctx context.Context) {
	name, ok := c.prompt("Enter member name: ")
	if !ok {
		return
	}
	email, ok := c.prompt("Enter member email: ")
	if !ok {
		return
	}
	member, err := c.library.AddMember(ctx, name, email)
	if err != nil {
		fmt.Fprintln(c.out, c.errorMessage(err))
		return
	}
	fmt.Fprintf(c.out, "Member added: %s %s\n", member.ID, member.Name)
}

func (c *Console) listMembers(ctx context.Context) {
	members, err := c.library.ListMembers(ctx)
	if err != nil {
		fmt.Fprintln(c.out, c.errorMessage(err))
		return
	}
	if len(members) == 0 {
		fmt.Fprintln(c.out, "There are no members.")
		return
	}
	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tBORROWED")
	for _, m := range members {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", m.ID, m.Name, m.Email, len(m.Borrowed))
	}
	tw.Flush()
	fmt.Fprintln(c.out)
}

func (c *Console) borrow(ctx context.Context) {
	memberID, ok := c.prompt("Enter the member ID: ")
	if !ok {
		return
	}
	bookID, ok := c.prompt("Enter the book ID: ")
	if !ok {
		return
	}
	record, err := c.library.Borrow(ctx, memberID, bookID)
	if err != nil {
		fmt.Fprintln(c.out, c.errorMessage(err))
		return
	}
	fmt.Fprintf(c.out, "Borrowed: %s (%s)\n", record.Title, record.BookID)
}

func (c *Console) returnBook(ctx context.Context) {
	memberID, ok := c.prompt("Enter the member ID: ")
	if !ok {
		return
	}
	member, err := c.library.GetMember(ctx, memberID)
	if err != nil {
		fmt.Fprintln(c.out, c.errorMessage(err))
		return
	}
	if len(member.Borrowed) == 0 {
		fmt.Fprintln(c.out, c.errorMessage(ErrNothingToReturn))
		return
	}

	fmt.Fprintln(c.out, "Borrowed books:")
	for i, b := range member.Borrowed {
		fmt.Fprintf(c.out, "%d. %s (%s) borrowed on %s\n", i+1, b.Title, b.BookID, b.BorrowOn)
	}

	raw, ok := c.prompt("Enter number to return: ")
	if !ok {
		return
	}
	choice, err := strconv.Atoi(raw)
	if err != nil {
		fmt.Fprintln(c.out, c.errorMessage(ErrInvalidSelection))
		return
	}
	record, err := c.library.Return(ctx, memberID, choice)
	if err != nil {
		fmt.Fprintln(c.out, c.errorMessage(err))
		return
	}
	fmt.Fprintf(c.out, "Returned: %s (%s)\n", record.Title, record.BookID)
}

// errorMessage maps a typed operation outcome to a short line for the
// console user. Unexpected failures are logged with their full cause.
func (c *Console) errorMessage(err error) string {
	switch {
	case errors.Is(err, ErrMemberNotFound):
		return "No member exists with that ID."
	case errors.Is(err, ErrBookNotFound):
		return "No book exists with that ID."
	case errors.Is(err, ErrOutOfStock):
		return "Sorry, no copies of that book are available."
	case errors.Is(err, ErrNothingToReturn):
		return "This member has no borrowed books."
	case errors.Is(err, ErrInvalidSelection):
		return "Invalid selection."
	case errors.Is(err, ErrInvalidCopies):
		return "Copies must be a non-negative number."
	default:
		c.logger.Error("console: operation failed", zap.Error(err))
		return "Something went wrong: " + err.Error()
	}
}
