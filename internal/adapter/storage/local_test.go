package storage_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/suite"

	"todolist/internal/adapter/storage"
)

type LocalStorageTestSuite struct {
	suite.Suite
	dir     string
	storage *storage.LocalStorage
}

func (s *LocalStorageTestSuite) SetupTest() {
	s.dir = filepath.Join(s.T().TempDir(), "static", "uploads")

	store, err := storage.NewLocalStorage(s.dir, "/uploads", nil, nil)
	s.Require().NoError(err)

	s.storage = store
}

func TestLocalStorageTestSuite(t *testing.T) {
	RegisterTestingT(t)
	suite.Run(t, new(LocalStorageTestSuite))
}

func (s *LocalStorageTestSuite) TestNew_CreatesNestedDirectory() {
	info, err := os.Stat(s.dir)

	Expect(err).To(BeNil())
	Expect(info.IsDir()).To(BeTrue())
}

func (s *LocalStorageTestSuite) TestNew_IsIdempotent() {
	_, err := storage.NewLocalStorage(s.dir, "/uploads", nil, nil)

	Expect(err).To(BeNil())
}

func (s *LocalStorageTestSuite) TestSave_WritesFileAndReturnsPublicPath() {
	publicPath, err := s.storage.Save(context.Background(), "abc_cat.png", strings.NewReader("meow"))

	Expect(err).To(BeNil())
	Expect(publicPath).To(Equal("/uploads/abc_cat.png"))

	content, err := os.ReadFile(filepath.Join(s.dir, "abc_cat.png"))

	Expect(err).To(BeNil())
	Expect(string(content)).To(Equal("meow"))
}

func (s *LocalStorageTestSuite) TestSave_StripsDirectories() {
	publicPath, err := s.storage.Save(context.Background(), "../../escape.png", strings.NewReader("x"))

	Expect(err).To(BeNil())
	Expect(publicPath).To(Equal("/uploads/escape.png"))
	Expect(filepath.Join(s.dir, "escape.png")).To(BeAnExistingFile())
}

func (s *LocalStorageTestSuite) TestNames() {
	prefixed := storage.PrefixedName("holiday photo.jpg")
	extension := storage.ExtensionName("holiday photo.jpg")

	Expect(prefixed).To(HaveSuffix("_holiday photo.jpg"))
	Expect(prefixed).To(HaveLen(36 + 1 + len("holiday photo.jpg")))
	Expect(extension).To(HaveSuffix(".jpg"))
	Expect(extension).To(HaveLen(36 + len(".jpg")))
}
