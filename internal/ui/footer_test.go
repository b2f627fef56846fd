package ui

import (
	"strings"
	"testing"
	"time"
)

func TestFooterRendersBindings(t *testing.T) {
	f := NewFooter()
	f.SetWidth(80)
	f.SetBindings([]KeyBinding{
		{Key: "enter", Desc: "sign in"},
		{Key: "tab", Desc: "next field"},
	})

	view := f.View()
	if !strings.Contains(view, "enter") || !strings.Contains(view, "sign in") {
		t.Errorf("bindings missing from footer: %q", view)
	}
}

func TestFlashReplacesBindings(t *testing.T) {
	f := NewFooter()
	f.SetWidth(80)
	f.SetBindings([]KeyBinding{{Key: "q", Desc: "quit"}})

	f.SetFlash("Workspace created", FlashSuccess)
	if !f.HasFlash() {
		t.Fatal("HasFlash should be true after SetFlash")
	}
	view := f.View()
	if !strings.Contains(view, "Workspace created") {
		t.Errorf("flash text missing: %q", view)
	}
	if strings.Contains(view, "quit") {
		t.Errorf("bindings should be hidden while a flash is visible: %q", view)
	}
}

func TestFlashExpires(t *testing.T) {
	f := NewFooter()
	f.SetWidth(80)
	f.SetFlashWithDuration("brief", FlashInfo, 10*time.Millisecond)

	time.Sleep(20 * time.Millisecond)
	if f.HasFlash() {
		t.Error("flash should have expired")
	}
	if !f.ClearExpiredFlash() {
		t.Error("ClearExpiredFlash should report the cleared flash")
	}
	if f.ClearExpiredFlash() {
		t.Error("second clear should be a no-op")
	}
}

func TestFlashTickReturnsCommand(t *testing.T) {
	if FlashTick() == nil {
		t.Error("FlashTick should return a command")
	}
}
