package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/mrlokans/library/internal/client"
	"github.com/mrlokans/library/internal/library"
)

// BooksCommand dispatches "books <list|get|add|edit|delete>".
type BooksCommand struct {
	env  *Env
	sub  string
	id   uint
	form library.BookForm

	// set records which field flags were given, for edit.
	set map[string]bool
}

func NewBooksCommand(env *Env) *BooksCommand {
	return &BooksCommand{env: env, set: map[string]bool{}}
}

func (cmd *BooksCommand) usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s books <subcommand> [options]\n\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "Subcommands:\n")
	fmt.Fprintf(os.Stderr, "  list                 List your books\n")
	fmt.Fprintf(os.Stderr, "  get -id N            Show one book\n")
	fmt.Fprintf(os.Stderr, "  add [fields]         Add a book (all fields required)\n")
	fmt.Fprintf(os.Stderr, "  edit -id N [fields]  Change only the given fields\n")
	fmt.Fprintf(os.Stderr, "  delete -id N         Delete a book\n")
	fmt.Fprintf(os.Stderr, "\nFields: -name -isbn -description -pages -author\n")
}

func (cmd *BooksCommand) ParseFlags(args []string) error {
	if len(args) == 0 {
		cmd.usage()
		return fmt.Errorf("missing books subcommand")
	}
	cmd.sub = args[0]

	fs := flag.NewFlagSet("books "+cmd.sub, flag.ContinueOnError)
	fs.StringVar(&cmd.env.Config.APIURL, "api", cmd.env.Config.APIURL, "Base URL of the library API")

	var id uint
	switch cmd.sub {
	case "list":
	case "get", "delete":
		fs.UintVar(&id, "id", 0, "Book id (required)")
	case "add", "edit":
		if cmd.sub == "edit" {
			fs.UintVar(&id, "id", 0, "Book id (required)")
		}
		fs.StringVar(&cmd.form.Name, "name", "", "Book name")
		fs.StringVar(&cmd.form.ISBN, "isbn", "", "ISBN")
		fs.StringVar(&cmd.form.Description, "description", "", "Description")
		fs.IntVar(&cmd.form.PageCount, "pages", 0, "Page count (at least 1)")
		fs.StringVar(&cmd.form.Author, "author", "", "Author")
	default:
		cmd.usage()
		return fmt.Errorf("unknown books subcommand: %s", cmd.sub)
	}

	if err := fs.Parse(args[1:]); err != nil {
		return err
	}
	fs.Visit(func(f *flag.Flag) { cmd.set[f.Name] = true })

	if cmd.sub != "list" && cmd.sub != "add" && id == 0 {
		return fmt.Errorf("required flag -id not provided")
	}
	cmd.id = id
	return nil
}

func (cmd *BooksCommand) Run(ctx context.Context) error {
	c, closeStore, err := cmd.env.connect()
	if err != nil {
		return err
	}
	defer closeStore()

	switch cmd.sub {
	case "list":
		err = cmd.list(ctx, c)
	case "get":
		err = cmd.get(ctx, c)
	case "add":
		err = cmd.add(ctx, c)
	case "edit":
		err = cmd.edit(ctx, c)
	case "delete":
		err = cmd.delete(ctx, c)
	default:
		err = fmt.Errorf("unknown books subcommand: %s", cmd.sub)
	}
	return explain(err)
}

func (cmd *BooksCommand) list(ctx context.Context, c *client.Client) error {
	books, err := c.Books().GetAll(ctx)
	if err != nil {
		return err
	}
	if len(books) == 0 {
		cmd.env.printf("No books yet.\n")
		return nil
	}

	w := tabwriter.NewWriter(cmd.env.Out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tAUTHOR\tPAGES\tISBN")
	for _, b := range books {
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\n", b.ID, b.Name, b.Author, b.PageCount, b.ISBN)
	}
	return w.Flush()
}

func (cmd *BooksCommand) get(ctx context.Context, c *client.Client) error {
	book, err := c.Books().GetByID(ctx, cmd.id)
	if err != nil {
		return err
	}
	cmd.printBook(book)
	return nil
}

func (cmd *BooksCommand) add(ctx context.Context, c *client.Client) error {
	if err := cmd.form.Validate(); err != nil {
		return err
	}
	book, err := c.Books().Create(ctx, cmd.form.Normalize())
	if err != nil {
		return err
	}
	cmd.env.printf("Book created successfully (id %d)\n", book.ID)
	return nil
}

// edit sends only the flags that were given, after checking the merged
// result locally.
func (cmd *BooksCommand) edit(ctx context.Context, c *client.Client) error {
	changes := cmd.changes()
	if changes == (library.BookChanges{}) {
		return errors.New("nothing to change, pass at least one of -name -isbn -description -pages -author")
	}

	current, err := c.Books().GetByID(ctx, cmd.id)
	if err != nil {
		return err
	}
	if err := changes.Apply(library.FormFromBook(*current)).Validate(); err != nil {
		return err
	}

	book, err := c.Books().Patch(ctx, cmd.id, changes)
	if err != nil {
		return err
	}
	cmd.env.printf("Book updated successfully\n")
	cmd.printBook(book)
	return nil
}

func (cmd *BooksCommand) delete(ctx context.Context, c *client.Client) error {
	message, err := c.Books().Delete(ctx, cmd.id)
	if err != nil {
		return err
	}
	cmd.env.printf("%s\n", message)
	return nil
}

func (cmd *BooksCommand) changes() library.BookChanges {
	var changes library.BookChanges
	if cmd.set["name"] {
		changes.Name = &cmd.form.Name
	}
	if cmd.set["isbn"] {
		changes.ISBN = &cmd.form.ISBN
	}
	if cmd.set["description"] {
		changes.Description = &cmd.form.Description
	}
	if cmd.set["pages"] {
		changes.PageCount = &cmd.form.PageCount
	}
	if cmd.set["author"] {
		changes.Author = &cmd.form.Author
	}
	return changes
}

func (cmd *BooksCommand) printBook(b *client.Book) {
	w := tabwriter.NewWriter(cmd.env.Out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "ID:\t%d\n", b.ID)
	fmt.Fprintf(w, "Name:\t%s\n", b.Name)
	fmt.Fprintf(w, "Author:\t%s\n", b.Author)
	fmt.Fprintf(w, "ISBN:\t%s\n", b.ISBN)
	fmt.Fprintf(w, "Pages:\t%d\n", b.PageCount)
	fmt.Fprintf(w, "Description:\t%s\n", b.Description)
	fmt.Fprintf(w, "Created:\t%s\n", b.CreatedAt.Local().Format("2006-01-02 15:04"))
	fmt.Fprintf(w, "Updated:\t%s\n", b.UpdatedAt.Local().Format("2006-01-02 15:04"))
	_ = w.Flush()
}
