package richtext

import "testing"

func TestDirectionContext_EnterExit(t *testing.T) {
	var d DirectionContext

	if got := d.EffectiveDirection(); got != Natural {
		t.Fatalf("initial direction = %v, want Natural", got)
	}

	d.EnterElement("div", "rtl", nil)
	if got := d.EffectiveDirection(); got != RTL {
		t.Fatalf("after entering rtl div = %v, want RTL", got)
	}

	d.EnterElement("span", "", nil)
	if got := d.EffectiveDirection(); got != RTL {
		t.Fatalf("inherited direction = %v, want RTL", got)
	}

	d.ExitElement()
	if got := d.EffectiveDirection(); got != RTL {
		t.Fatalf("after exiting span = %v, want RTL (restored)", got)
	}

	d.ExitElement()
	if got := d.EffectiveDirection(); got != Natural {
		t.Fatalf("after exiting div = %v, want Natural", got)
	}
}

func TestDirectionContext_ExitOnEmptyStackIsNoop(t *testing.T) {
	var d DirectionContext
	d.ExitElement() // must not panic
	if got := d.EffectiveDirection(); got != Natural {
		t.Fatalf("direction after no-op exit = %v, want Natural", got)
	}
}

func TestDirectionContext_BdiAutoDetect(t *testing.T) {
	var d DirectionContext
	d.EnterElement("bdi", "", []byte("مرحبا"))
	if got := d.EffectiveDirection(); got != RTL {
		t.Fatalf("bdi auto-detect = %v, want RTL", got)
	}
	if !d.IsIsolated() {
		t.Fatal("expected IsIsolated() true inside <bdi>")
	}
	if d.IsOverride() {
		t.Fatal("expected IsOverride() false inside <bdi>")
	}
}

func TestDirectionContext_BdiEmptyLookaheadKeepsDirection(t *testing.T) {
	var d DirectionContext
	d.EnterElement("div", "rtl", nil)
	d.EnterElement("bdi", "", nil) // no text yet, no dir attr
	if got := d.EffectiveDirection(); got != RTL {
		t.Fatalf("bdi with no lookahead should inherit, got %v", got)
	}
}

func TestDirectionContext_BdoOverrideDepth(t *testing.T) {
	var d DirectionContext
	d.EnterElement("bdo", "rtl", nil)
	if !d.IsOverride() {
		t.Fatal("expected IsOverride() true inside <bdo>")
	}
	if d.IsIsolated() {
		t.Fatal("expected IsIsolated() false inside <bdo>")
	}
	d.ExitElement()
	if d.IsOverride() {
		t.Fatal("expected IsOverride() false after exiting <bdo>")
	}
}

func TestDirectionContext_DirAutoUsesLookahead(t *testing.T) {
	var d DirectionContext
	d.EnterElement("p", "auto", []byte("שלום"))
	if got := d.EffectiveDirection(); got != RTL {
		t.Fatalf("dir=auto with rtl lookahead = %v, want RTL", got)
	}
}

func TestDirectionContext_UnknownDirValueIgnored(t *testing.T) {
	var d DirectionContext
	d.EnterElement("p", "sideways", nil)
	if got := d.EffectiveDirection(); got != Natural {
		t.Fatalf("unrecognized dir value should be ignored, got %v", got)
	}
}
