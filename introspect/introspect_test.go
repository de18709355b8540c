package introspect

import "testing"

func TestComponentShellInterfaceHasCoreMethods(t *testing.T) {
	iface := ComponentShellInterface("mp3-decoder")
	if iface.Name != "mp3-decoder" {
		t.Fatalf("Name = %q, want mp3-decoder", iface.Name)
	}
	want := []string{"GetParameter", "SetParameter", "GetConfig", "SetConfig", "SendCommand", "EmptyThisBuffer", "FillThisBuffer"}
	if len(iface.Methods) != len(want) {
		t.Fatalf("Methods = %d, want %d", len(iface.Methods), len(want))
	}
	for i, m := range iface.Methods {
		if m.Name != want[i] {
			t.Fatalf("Methods[%d] = %q, want %q", i, m.Name, want[i])
		}
	}
}

func TestComponentShellInterfaceSignals(t *testing.T) {
	iface := ComponentShellInterface("pulse-sink")
	names := map[string]bool{}
	for _, s := range iface.Signals {
		names[s.Name] = true
	}
	for _, want := range []string{"CommandComplete", "Error", "PortSettingsChanged", "BufferFlag"} {
		if !names[want] {
			t.Fatalf("missing signal %q", want)
		}
	}
}

func TestMPRISInterfaceExposesTransportControls(t *testing.T) {
	iface := MPRISInterface()
	if iface.Name != "org.mpris.MediaPlayer2.Player" {
		t.Fatalf("Name = %q", iface.Name)
	}
	names := map[string]bool{}
	for _, m := range iface.Methods {
		names[m.Name] = true
	}
	for _, want := range []string{"Play", "Pause", "Stop", "Next", "Previous", "Seek", "Mute"} {
		if !names[want] {
			t.Fatalf("missing method %q", want)
		}
	}
	if len(iface.Properties) == 0 {
		t.Fatalf("expected non-empty Properties")
	}
}
