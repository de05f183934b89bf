package utils

import (
	"errors"
	"math"
	"os"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMemFS struct {
	create func(string) (afero.File, error)
}

func (ffs fakeMemFS) Create(name string) (afero.File, error) {
	if ffs.create != nil {
		return ffs.create(name)
	}

	return os.CreateTemp("", "fakeMemFS-*.file")
}

func (ffs fakeMemFS) Mkdir(name string, perm os.FileMode) error {
	panic("implement me")
}

func (ffs fakeMemFS) MkdirAll(path string, perm os.FileMode) error {
	panic("implement me")
}

func (ffs fakeMemFS) Open(name string) (afero.File, error) {
	panic("implement me")
}

func (ffs fakeMemFS) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	panic("implement me")
}

func (ffs fakeMemFS) Remove(name string) error {
	panic("implement me")
}

func (ffs fakeMemFS) RemoveAll(path string) error {
	panic("implement me")
}

func (ffs fakeMemFS) Rename(oldname, newname string) error {
	panic("implement me")
}

func (ffs fakeMemFS) Stat(name string) (os.FileInfo, error) {
	panic("implement me")
}

func (ffs fakeMemFS) Name() string {
	panic("implement me")
}

func (ffs fakeMemFS) Chmod(name string, mode os.FileMode) error {
	panic("implement me")
}

func (ffs fakeMemFS) Chown(name string, uid, gid int) error {
	panic("implement me")
}

func (ffs fakeMemFS) Chtimes(name string, atime time.Time, mtime time.Time) error {
	panic("implement me")
}

func TestFs_WriteJSON(t *testing.T) {
	testCases := []struct {
		name          string
		memfs         Fs
		inputData     interface{}
		expectedError error
	}{
		{
			name:      "happy path",
			memfs:     NewFs(fakeMemFS{}),
			inputData: `{}`,
		},
		{
			name: "sad path: fs.AppFs.Create returns an error",
			memfs: NewFs(fakeMemFS{
				create: func(s string) (file afero.File, e error) {
					return nil, errors.New("cannot create file")
				},
			}),
			expectedError: errors.New("unable to open a file: cannot create file"),
		},
		{
			name:          "sad path: bad json input data",
			memfs:         NewFs(fakeMemFS{}),
			inputData:     math.NaN(),
			expectedError: errors.New("failed to marshal JSON: json: unsupported value: NaN"),
		},
	}

	for _, tc := range testCases {
		err := tc.memfs.WriteJSON("foo", tc.inputData)
		switch {
		case tc.expectedError != nil:
			assert.Equal(t, tc.expectedError.Error(), err.Error(), tc.name)
		default:
			assert.NoError(t, err, tc.name)
		}
	}
}

func TestFs_ReadJSON(t *testing.T) {
	testCases := []struct {
		name      string
		content   string
		want      map[string]string
		wantErr   string
		noCreated bool
	}{
		{
			name:    "happy path",
			content: `{"https://nginx.org/en/security_advisories.html": "\"abc\""}`,
			want:    map[string]string{"https://nginx.org/en/security_advisories.html": `"abc"`},
		},
		{
			name:      "missing file",
			noCreated: true,
			want:      map[string]string{},
		},
		{
			name:    "broken JSON",
			content: `{`,
			want:    map[string]string{},
			wantErr: "failed to decode JSON",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			fs := NewFs(afero.NewMemMapFs())
			if !tc.noCreated {
				require.NoError(t, afero.WriteFile(fs.AppFs, "/state/etags.json", []byte(tc.content), 0644))
			}

			got := map[string]string{}
			err := fs.ReadJSON("/state/etags.json", &got)
			if tc.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestFs_SaveCVEPerYear(t *testing.T) {
	testCases := []struct {
		name     string
		cveID    string
		wantPath string
		wantErr  string
	}{
		{
			name:     "happy path",
			cveID:    "CVE-2021-23017",
			wantPath: "/vuln-list/nginx/2021/CVE-2021-23017.json",
		},
		{
			name:    "invalid CVE-ID",
			cveID:   "CVE-2021",
			wantErr: "invalid CVE-ID format",
		},
		{
			name:    "empty CVE-ID",
			cveID:   "",
			wantErr: "invalid CVE-ID format",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			fs := NewFs(afero.NewMemMapFs())
			err := fs.SaveCVEPerYear("/vuln-list/nginx", tc.cveID, map[string]string{"id": tc.cveID})
			if tc.wantErr != "" {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidCVEID)
				return
			}
			require.NoError(t, err)

			b, err := afero.ReadFile(fs.AppFs, tc.wantPath)
			require.NoError(t, err)
			assert.JSONEq(t, `{"id": "CVE-2021-23017"}`, string(b))
		})
	}
}
