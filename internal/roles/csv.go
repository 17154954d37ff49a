package roles

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// UserList is a parsed username CSV file.
type UserList struct {
	// Columns are the header names in file order.
	Columns []string
	// Rows is the number of data rows, blank ones included.
	Rows int
	// Usernames holds one name per row that has one, in file order. Repeats
	// are kept; see Unique.
	Usernames []string
}

// ReadUserListFile parses the CSV file at path.
func ReadUserListFile(path string) (UserList, error) {
	f, err := os.Open(path)
	if err != nil {
		return UserList{}, err
	}
	defer f.Close()

	return ReadUserList(f)
}

// ReadUserList parses a CSV with a header row. The username of a row is taken
// from the "discord" column, else the "username" column, else the first
// column, skipping empty cells.
func ReadUserList(r io.Reader) (UserList, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return UserList{}, nil
		}
		return UserList{}, fmt.Errorf("read header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	list := UserList{Columns: header}

	discordCol := column(header, "discord")
	usernameCol := column(header, "username")

	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return list, fmt.Errorf("read row %d: %w", list.Rows+1, err)
		}
		list.Rows++

		if name := pick(record, discordCol, usernameCol, 0); name != "" {
			list.Usernames = append(list.Usernames, name)
		}
	}

	return list, nil
}

// Unique returns the usernames without repeats.
func (l UserList) Unique() []string {
	return Unique(l.Usernames)
}

// Inspection summarizes a UserList before it is processed.
type Inspection struct {
	Rows    int
	Unique  int
	Columns []string
	// First holds up to ten of the usernames that will be processed.
	First []string
}

// Inspect summarizes l.
func (l UserList) Inspect() Inspection {
	unique := l.Unique()
	first := unique
	if len(first) > 10 {
		first = first[:10]
	}
	return Inspection{
		Rows:    l.Rows,
		Unique:  len(unique),
		Columns: l.Columns,
		First:   first,
	}
}

func column(header []string, name string) int {
	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(h), name) {
			return i
		}
	}
	return -1
}

func pick(record []string, cols ...int) string {
	for _, col := range cols {
		if col < 0 || col >= len(record) {
			continue
		}
		if v := strings.TrimSpace(record[col]); v != "" {
			return v
		}
	}
	return ""
}
