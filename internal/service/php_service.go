package service

import (
	"context"
	"fmt"
	"strings"

	"hostpanel/internal/fixtures"
	"hostpanel/internal/model"
	"hostpanel/pkg/apierror"
)

type PHPConfigKind string

const (
	PHPPool PHPConfigKind = "pool"
	PHPIni  PHPConfigKind = "ini"
)

type PHPService struct {
	Panel

	extensions *toggleSet
	pool       textDoc
	ini        textDoc
}

func NewPHPService(panel Panel, seed fixtures.PHP) *PHPService {
	s := &PHPService{Panel: panel, extensions: newToggleSet(seed.Extensions)}
	s.pool.Set(seed.PoolConfig)
	s.ini.Set(seed.INI)
	return s
}

func (s *PHPService) Extensions(query string) []model.Toggle {
	return s.extensions.Search(query)
}

func (s *PHPService) ToggleExtension(ctx context.Context, name string) (model.Toggle, error) {
	ext, ok := s.extensions.Flip(strings.TrimSpace(name))
	if !ok {
		return model.Toggle{}, model.ErrModuleNotFound
	}

	state := enabledWord(ext.Enabled)
	s.info(ctx, "Module "+ext.Name, fmt.Sprintf("%s module has been %s.", ext.Name, state))
	s.record(ctx, model.ActivityInfo, "php", "toggle_extension", fmt.Sprintf("PHP module %s: %s", state, ext.Name), ext.Description)
	return ext, nil
}

func (s *PHPService) Config(kind PHPConfigKind) (string, error) {
	doc, err := s.doc(kind)
	if err != nil {
		return "", err
	}
	return doc.Get(), nil
}

func (s *PHPService) SaveConfig(ctx context.Context, kind PHPConfigKind, content string) error {
	doc, err := s.doc(kind)
	if err != nil {
		return err
	}
	if strings.TrimSpace(content) == "" {
		return apierror.BadRequest("configuration cannot be empty", "content")
	}

	doc.Set(content)
	s.info(ctx, "Configuration Saved", "PHP configuration has been saved successfully.")
	s.record(ctx, model.ActivitySuccess, "php", "save_config", "PHP configuration updated", string(kind))
	return nil
}

func (s *PHPService) doc(kind PHPConfigKind) (*textDoc, error) {
	switch kind {
	case PHPPool:
		return &s.pool, nil
	case PHPIni:
		return &s.ini, nil
	default:
		return nil, apierror.BadRequest("unknown configuration file", string(kind))
	}
}
