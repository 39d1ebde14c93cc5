// SPDX-License-Identifier: MPL-2.0

package extension

import "github.com/spf13/pflag"

type (
	stubExtension struct {
		Base
		flagErr error
	}
)

func stub(name string, after ...string) Extension {
	return &stubExtension{Base: NewBase(name, after...)}
}

func (s *stubExtension) RegisterOptions(fs *pflag.FlagSet, defaults Options) error {
	if s.flagErr != nil {
		return s.flagErr
	}
	fs.Bool(FlagName(s.Name()), defaults.Bool(s.Name()), "enable "+s.Name())
	return nil
}

func factory(name string, after ...string) Factory {
	return func() Extension { return stub(name, after...) }
}
