package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestImproveInputText(t *testing.T) {
	origFile := improveFile
	defer func() { improveFile = origFile }()

	path := filepath.Join(t.TempDir(), "draft.txt")
	if err := os.WriteFile(path, []byte("pls fix teh deploy"), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		args    []string
		file    string
		want    string
		wantErr bool
	}{
		{name: "from argument", args: []string{"needs polish"}, want: "needs polish"},
		{name: "from file", file: path, want: "pls fix teh deploy"},
		{name: "file and argument", args: []string{"x"}, file: path, wantErr: true},
		{name: "missing file", file: filepath.Join(t.TempDir(), "nope.txt"), wantErr: true},
		{name: "nothing given", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			improveFile = tt.file

			got, err := improveInputText(tt.args)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}
