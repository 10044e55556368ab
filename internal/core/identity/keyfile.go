package identity

import (
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const pemTypeSeed = "ED25519 PRIVATE KEY"

// Save 将身份种子写入 PEM 文件（0600，临时文件 + rename）
func (i *Identity) Save(path string) error {
	data := pem.EncodeToMemory(&pem.Block{Type: pemTypeSeed, Bytes: i.Seed()})
	return atomicWriteFile(path, data, 0o600)
}

// Load 从 PEM 文件加载身份
func Load(path string) (*Identity, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrKeyNotFound
		}
		return nil, err
	}
	block, _ := pem.Decode(data)
	if block == nil || block.Type != pemTypeSeed {
		return nil, ErrInvalidPEM
	}
	return FromSeed(block.Bytes)
}

// LoadOrGenerate 加载身份，文件不存在时生成并保存
//
// path 为空时只生成临时身份。
func LoadOrGenerate(path string) (*Identity, error) {
	if path == "" {
		return Generate()
	}
	id, err := Load(path)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, ErrKeyNotFound) {
		return nil, err
	}

	id, err = Generate()
	if err != nil {
		return nil, err
	}
	if err := id.Save(path); err != nil {
		return nil, fmt.Errorf("save identity: %w", err)
	}
	logger.Info("已生成新身份", "id", id.ID(), "path", path)
	return id, nil
}

func atomicWriteFile(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create key dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".key-")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	ok := false
	defer func() {
		if !ok {
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Chmod(perm); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}
	ok = true
	return nil
}
