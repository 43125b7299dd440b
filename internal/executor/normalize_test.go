package executor

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		res  RawResult
		want string
	}{
		{
			name: "success stdout only",
			res:  RawResult{Stdout: "hi\n"},
			want: "hi",
		},
		{
			name: "success with stderr warnings appends",
			res:  RawResult{Stdout: "a", Stderr: "w"},
			want: "aw",
		},
		{
			name: "failure prefers stderr",
			res:  RawResult{Stdout: "partial", Stderr: "boom", ExitCode: 1},
			want: "boom",
		},
		{
			name: "failure with empty stderr falls back to process error",
			res:  RawResult{ExitCode: 2, ProcErr: "exit status 2"},
			want: "exit status 2",
		},
		{
			name: "output is trimmed",
			res:  RawResult{Stdout: "  spaced  \n"},
			want: "spaced",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(&tt.res); got != tt.want {
				t.Errorf("Normalize() = %q, want %q", got, tt.want)
			}
		})
	}
}
