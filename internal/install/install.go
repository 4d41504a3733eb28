package install

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/zeebo/blake3"

	"github.com/danielpaulus/go-ios-npm/internal/artifact"
	"github.com/danielpaulus/go-ios-npm/internal/metaerr"
)

// Installer copies distributed binaries into install directories.
type Installer struct {
	locator *artifact.Locator

	rename func(oldpath, newpath string) error
}

// NewInstaller returns an Installer finding source binaries with locator.
func NewInstaller(locator *artifact.Locator) *Installer {
	if locator == nil {
		locator = artifact.NewLocator(nil)
	}
	return &Installer{
		locator: locator,
		rename:  os.Rename,
	}
}

// Install copies the binary described by d from the package at sourceRoot
// to t.Path() and sets the destination file's permissions to `rwxr-xr-x`.
// It returns the destination path.
//
// The package keeps its copy. An existing destination is replaced and only
// dropped once the new binary has been verified.
func (i *Installer) Install(d artifact.Descriptor, sourceRoot string, t Target) (string, error) {
	if err := t.Validate(); err != nil {
		return "", err
	}

	loc, err := i.locator.Locate(d, filepath.Join(sourceRoot, artifact.DistDir))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrCopyFailed, err)
	}

	dst := t.Path()
	srcDigest, err := i.place(loc.Path, dst)
	if err != nil {
		if !errors.Is(err, ErrVerificationFailed) {
			err = fmt.Errorf("%w: %w", ErrCopyFailed, err)
		}
		return "", metaerr.WithMetadata(err, "src", loc.Path, "dst", dst)
	}

	slog.Info("installed binary", "src", loc.Path, "dst", dst, "version", t.Version)
	slog.Debug("binary digest", "blake3", fmt.Sprintf("%x", srcDigest))
	return dst, nil
}

// place copies src to a staging file next to dst and moves it into place,
// returning the digest of the copied content.
func (i *Installer) place(src string, dst string) ([]byte, error) {
	ifile, err := os.Open(src)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = ifile.Close()
	}()

	dstDir := filepath.Dir(dst)
	dstName := filepath.Base(dst)

	if err := os.MkdirAll(dstDir, 0o755); err != nil {
		return nil, fmt.Errorf("create install directory: %w", err)
	}

	// write src to new temporary dst
	dstNew := filepath.Join(dstDir, fmt.Sprintf(".%s.%s.new", dstName, uuid.NewString()))
	ofile, err := os.OpenFile(dstNew, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o755)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = ofile.Close()
		_ = os.Remove(dstNew)
	}()

	hasher := blake3.New()
	if _, err := io.Copy(io.MultiWriter(ofile, hasher), ifile); err != nil {
		return nil, err
	}
	if err := ofile.Sync(); err != nil {
		return nil, err
	}
	// close ofile here, since windows wouldn't let us move the new file
	if err := ofile.Close(); err != nil {
		return nil, err
	}
	// the umask may have dropped bits from the create mode
	if err := os.Chmod(dstNew, 0o755); err != nil {
		return nil, err
	}
	digest := hasher.Sum(nil)

	var dstOld string
	if info, err := os.Lstat(dst); err == nil { // file exists
		if info.IsDir() {
			return nil, fmt.Errorf("%s is a directory", dst)
		}
		dstOld = filepath.Join(dstDir, fmt.Sprintf(".%s.old", dstName))

		// delete existing old file (for windows' sake)
		_ = os.Remove(dstOld)

		// move existing file
		if err := i.rename(dst, dstOld); err != nil {
			return nil, err
		}
	}

	// move the new file
	if err := i.rename(dstNew, dst); err != nil {
		restore(dstOld, dst)
		return nil, err
	}

	if err := verify(dst, digest); err != nil {
		_ = os.Remove(dst)
		restore(dstOld, dst)
		return nil, err
	}

	if dstOld != "" {
		if err := os.Remove(dstOld); err != nil {
			// windows keeps running executables locked
			slog.Debug("failed to remove replaced binary", "path", dstOld, "error", err)
		}
	}

	return digest, nil
}

// verify checks that dst is a regular file holding content with the given
// digest.
func verify(dst string, want []byte) error {
	info, err := os.Stat(dst)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrVerificationFailed, err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%w: %s is not a regular file", ErrVerificationFailed, dst)
	}

	got, err := fileDigest(dst)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrVerificationFailed, err)
	}
	if string(got) != string(want) {
		return fmt.Errorf("%w: %s content differs from source", ErrVerificationFailed, dst)
	}
	return nil
}

func restore(dstOld string, dst string) {
	if dstOld == "" {
		return
	}
	if err := os.Rename(dstOld, dst); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to restore replaced binary", "path", dstOld, "error", err)
	}
}

func fileDigest(name string) ([]byte, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = f.Close()
	}()

	hasher := blake3.New()
	if _, err := io.Copy(hasher, f); err != nil {
		return nil, err
	}
	return hasher.Sum(nil), nil
}
