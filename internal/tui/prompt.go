package tui

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/huh"
)

// NewDayForm builds the confirmation shown when the calendar day has
// changed. running is the number of timers that will be stopped.
func NewDayForm(day time.Time, running int, confirmed *bool) *huh.Form {
	desc := "Timers keep running until you confirm."
	if running > 0 {
		desc = fmt.Sprintf("%d running timer(s) will be stopped and the previous day copied forward if enabled.", running)
	}
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("It's a new day: %s. Start it?", day.Format("Monday, Jan 2"))).
				Description(desc).
				Affirmative("Start day").
				Negative("Not yet").
				Value(confirmed),
		),
	).WithTheme(huh.ThemeCharm())
}

// ConfirmNewDay asks on the terminal whether to begin a new day. Aborting
// the prompt answers no.
func ConfirmNewDay(day time.Time, running int) (bool, error) {
	confirmed := true
	if err := NewDayForm(day, running, &confirmed).Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return false, nil
		}
		return false, err
	}
	return confirmed, nil
}

// Confirm asks a yes/no question, defaulting to no.
func Confirm(title string) (bool, error) {
	var confirmed bool
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().Title(title).Value(&confirmed),
		),
	).WithTheme(huh.ThemeCharm()).Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return false, nil
	}
	return confirmed, err
}
