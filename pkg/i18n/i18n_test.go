package i18n

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCulture(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"en-US", "en-US"},
		{"en_US.UTF-8", "en-US"},
		{"de_DE@euro", "de-DE"},
		{" zh-CN ", "zh-CN"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			tag, err := ParseCulture(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, tag.String())
		})
	}
}

func TestParseCultureRejectsUnknown(t *testing.T) {
	for _, in := range []string{"", "C", "POSIX", "xx-INVALID", "not a culture"} {
		_, err := ParseCulture(in)
		assert.True(t, errors.Is(err, ErrUnknownCulture), "input %q", in)
	}
}

func TestIsDevCulture(t *testing.T) {
	assert.True(t, IsDevCulture("zh-CN"))
	assert.True(t, IsDevCulture("zh_CN.UTF-8"))
	assert.False(t, IsDevCulture("en-US"))
	assert.False(t, IsDevCulture("garbage!"))
}

func TestSystemCultureFromEnv(t *testing.T) {
	t.Setenv("LC_ALL", "")
	t.Setenv("LC_MESSAGES", "")
	t.Setenv("LANG", "fr_FR.UTF-8")
	assert.Equal(t, "fr-FR", SystemCulture())

	t.Setenv("LANG", "C")
	assert.Equal(t, "en-US", SystemCulture())
}

func TestTranslator(t *testing.T) {
	tr := NewTranslator()
	require.NoError(t, tr.Add("en-US", "保存", "Save"))

	assert.False(t, tr.Enabled())
	assert.Equal(t, "保存", tr.Translate("保存"))

	require.NoError(t, tr.SetCurrentCulture("en-US"))
	tr.SetEnabled(true)
	assert.Equal(t, "en-US", tr.CurrentCulture())
	assert.Equal(t, "Save", tr.Translate("保存"))
	assert.Equal(t, "missing", tr.Translate("missing"))

	require.NoError(t, tr.Add("en-US", "删除", "Delete"))
	assert.Equal(t, "Delete", tr.Translate("删除"))

	assert.Error(t, tr.SetCurrentCulture("xx-INVALID"))
	assert.Equal(t, "en-US", tr.CurrentCulture())
}

func TestTranslatorTreatsPercentLiterally(t *testing.T) {
	tr := NewTranslator()
	require.NoError(t, tr.SetCurrentCulture("fr-FR"))
	tr.SetEnabled(true)

	assert.Equal(t, "100% done", tr.Translate("100% done"))

	require.NoError(t, tr.Add("fr-FR", "50% off", "50% de remise"))
	assert.Equal(t, "50% de remise", tr.Translate("50% off"))
}
