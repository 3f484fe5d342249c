package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/passvault/internal/client"
	"github.com/dmitrijs2005/passvault/internal/common"
	"github.com/dmitrijs2005/passvault/internal/models"
)

// Sync drains the share's pending events into the local store. When the
// server is unreachable the local vault stays usable, so that case is
// reported rather than treated as a failure.
func (a *App) Sync(ctx context.Context, shareID string) error {
	err := a.syncer.Invoke(ctx, a.userID, shareID)
	if errors.Is(err, client.ErrUnavailable) {
		printlnFn("Server unavailable, local data unchanged.")
		return nil
	}
	if err != nil {
		return err
	}
	printlnFn("Share is up to date.")
	return nil
}

func (a *App) List(ctx context.Context, shareID string) error {
	views, err := a.items.List(ctx, shareID)
	if err != nil {
		return err
	}
	if len(views) == 0 {
		printlnFn("No items.")
		return nil
	}
	for _, v := range views {
		printlnFn(fmt.Sprintf("%-36s  %-10s  %s", v.ID, v.Type, v.Title))
	}
	return nil
}

func (a *App) Show(ctx context.Context, shareID, itemID string) error {
	v, err := a.items.Get(ctx, shareID, itemID)
	if errors.Is(err, common.ErrNotFound) {
		printlnFn("No such item.")
		return nil
	}
	if err != nil {
		return err
	}

	printlnFn("ID:      ", v.ID)
	printlnFn("Type:    ", string(v.Type))
	printlnFn("Title:   ", v.Title)
	printlnFn("Revision:", v.Revision)
	if v.Note != "" {
		printlnFn("Note:    ", v.Note)
	}
	return nil
}

func (a *App) AddLogin(ctx context.Context, shareID string) error {
	title, err := GetSimpleText(a.reader, "Title", a.out())
	if err != nil {
		return err
	}
	username, err := GetSimpleText(a.reader, "Username", a.out())
	if err != nil {
		return err
	}
	password, err := GetPassword(a.out())
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	content, err := models.Wrap(models.ItemTypeLogin, title, "",
		models.LoginDetails{Username: username, Password: string(password)})
	if err != nil {
		return err
	}

	v, err := a.items.Add(ctx, a.userID, shareID, content)
	if err != nil {
		return err
	}
	printlnFn("Added login", v.ID)
	return nil
}

func (a *App) AddNote(ctx context.Context, shareID string) error {
	title, err := GetSimpleText(a.reader, "Title", a.out())
	if err != nil {
		return err
	}
	note, err := GetMultiline(a.reader, "Note", a.out())
	if err != nil {
		return err
	}

	content, err := models.Wrap(models.ItemTypeNote, title, note, models.NoteDetails{})
	if err != nil {
		return err
	}

	v, err := a.items.Add(ctx, a.userID, shareID, content)
	if err != nil {
		return err
	}
	printlnFn("Added note", v.ID)
	return nil
}
