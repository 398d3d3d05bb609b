package db

import "testing"

func TestSettingsDefaultsAndOverrides(t *testing.T) {
	d := openTestDB(t)

	value, err := d.GetSetting("focus_default_minutes")
	if err != nil {
		t.Fatal(err)
	}
	if value != "25" {
		t.Errorf("default focus_default_minutes = %q, want 25", value)
	}

	if err := d.SetSetting("focus_default_minutes", "50"); err != nil {
		t.Fatal(err)
	}
	value, err = d.GetSetting("focus_default_minutes")
	if err != nil {
		t.Fatal(err)
	}
	if value != "50" {
		t.Errorf("stored focus_default_minutes = %q, want 50", value)
	}

	all, err := d.GetAllSettings()
	if err != nil {
		t.Fatal(err)
	}
	if all["focus_default_minutes"] != "50" {
		t.Error("GetAllSettings should reflect the stored override")
	}
	if all["log_level"] != "info" {
		t.Error("GetAllSettings should fill untouched defaults")
	}
}

func TestUpdateSettingsBatch(t *testing.T) {
	d := openTestDB(t)

	err := d.UpdateSettings(map[string]string{
		"log_level":         "debug",
		"reminders_enabled": "false",
	})
	if err != nil {
		t.Fatal(err)
	}

	all, err := d.GetAllSettings()
	if err != nil {
		t.Fatal(err)
	}
	if all["log_level"] != "debug" || all["reminders_enabled"] != "false" {
		t.Errorf("unexpected settings after batch update: %v", all)
	}
}

func TestResetSettings(t *testing.T) {
	d := openTestDB(t)

	err := d.UpdateSettings(map[string]string{
		"focus_default_minutes": "50",
		"log_level":             "debug",
	})
	if err != nil {
		t.Fatal(err)
	}

	if err := d.ResetSettings(); err != nil {
		t.Fatal(err)
	}

	all, err := d.GetAllSettings()
	if err != nil {
		t.Fatal(err)
	}
	if all["focus_default_minutes"] != "25" {
		t.Errorf("focus_default_minutes = %q after reset, want default 25", all["focus_default_minutes"])
	}
	if all["log_level"] != "info" {
		t.Errorf("log_level = %q after reset, want default info", all["log_level"])
	}
}
