package control

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for environment overrides, e.g.
// SOFTRIG_POLAR_ITERATIONS=6.
const EnvPrefix = "SOFTRIG"

func setDefaults(v *viper.Viper) {
	d := Defaults()
	forces := make([]map[string]any, len(d.Forces))
	for i, f := range d.Forces {
		forces[i] = map[string]any{
			"id":                 f.ID,
			"radius":             f.Radius,
			"radius_scale_index": f.RadiusScaleIndex,
			"intensity":          f.Intensity,
		}
	}
	scales := make([]map[string]any, len(d.Scales))
	for i, s := range d.Scales {
		scales[i] = map[string]any{"name": s.Name, "value": s.Value}
	}
	v.SetDefault("forces", forces)
	v.SetDefault("scales", scales)
	v.SetDefault("polar_iterations", d.PolarIterations)
}

// LoadConfig reads the control state. An explicit path must exist; without
// one, softrig.yaml is looked up in the working directory and in
// $HOME/.config/softrig, and built-in defaults are used when neither exists.
// Environment variables prefixed with EnvPrefix override scalar keys.
func LoadConfig(path string) (State, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("softrig")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/softrig")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return State{}, fmt.Errorf("reading config: %w", err)
		}
	}

	var st State
	if err := v.Unmarshal(&st); err != nil {
		return State{}, fmt.Errorf("decoding config: %w", err)
	}
	if err := st.Validate(); err != nil {
		return State{}, fmt.Errorf("invalid config %s: %w", v.ConfigFileUsed(), err)
	}
	return st, nil
}
