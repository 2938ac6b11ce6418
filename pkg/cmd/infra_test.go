package infra

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/larivierec/infra-modules/pkg/module"
	"github.com/larivierec/infra-modules/pkg/params"
	"github.com/larivierec/infra-modules/pkg/transport"
	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"
	"gotest.tools/v3/fs"
)

// echoModule reports its "value" parameter back, or fails when asked to.
type echoModule struct{}

var echoSpec = params.Spec{
	{Name: "value", Required: true, Description: "Value to echo"},
	{Name: "secret", NoLog: true, Description: "Never logged"},
	{Name: "fail", Type: params.Bool, Default: false, Description: "Fail with an API error"},
}

func (echoModule) Name() string        { return "testing.echo" }
func (echoModule) Description() string { return "Echo a value" }
func (echoModule) Spec() params.Spec   { return echoSpec }

func (echoModule) Run(_ context.Context, env module.Env, raw map[string]any) (module.Result, error) {
	values, err := echoSpec.Parse(raw)
	if err != nil {
		return module.Result{}, err
	}
	if values["fail"].(bool) {
		return module.Result{}, &transport.APIError{Method: "GET", URL: "http://api/thing", StatusCode: 500, Body: "boom"}
	}
	env.Logger.Info("echoing")
	return module.Result{Changed: true, Key: "echo", Data: values["value"]}, nil
}

func init() { module.Register(echoModule{}) }

func argsFile(t *testing.T, content string) string {
	t.Helper()
	return fs.NewFile(t, "args", fs.WithContent(content)).Path()
}

func decode(t *testing.T, out *bytes.Buffer) map[string]any {
	t.Helper()
	var res map[string]any
	assert.NilError(t, json.Unmarshal(out.Bytes(), &res))
	return res
}

func TestExecute_MultiCall(t *testing.T) {
	var stdout, stderr bytes.Buffer
	path := argsFile(t, `{"value": "hello", "_ansible_check_mode": false}`)

	code := execute([]string{"/tmp/ansible-tmp/testing_echo", path}, &stdout, &stderr)
	assert.Equal(t, code, ExitSuccess)
	assert.DeepEqual(t, decode(t, &stdout), map[string]any{"changed": true, "echo": "hello"})
	assert.Check(t, is.Contains(stderr.String(), "echoing"))
}

func TestExecute_AnsibleInvocationNames(t *testing.T) {
	path := argsFile(t, `{"value": "hello"}`)

	for _, name := range []string{"/tmp/ansible-tmp/echo", "/tmp/ansible-tmp/acme.testing.echo"} {
		var stdout, stderr bytes.Buffer
		code := execute([]string{name, path}, &stdout, &stderr)
		assert.Equal(t, code, ExitSuccess, name)
		assert.DeepEqual(t, decode(t, &stdout), map[string]any{"changed": true, "echo": "hello"})
	}
}

func TestExecute_UnknownModuleWritesFailureJSON(t *testing.T) {
	var stdout, stderr bytes.Buffer
	path := argsFile(t, `{"value": "hello"}`)

	code := execute([]string{"/tmp/ansible-tmp/no_such_module", path}, &stdout, &stderr)
	assert.Equal(t, code, ExitFailure)
	res := decode(t, &stdout)
	assert.Equal(t, res["failed"], true)
	assert.Equal(t, res["msg"], `User Error: no module named "no_such_module"`)
}

func TestExecute_MultiCallNeedsOneArgsFile(t *testing.T) {
	var stdout, stderr bytes.Buffer

	code := execute([]string{"testing_echo"}, &stdout, &stderr)
	assert.Equal(t, code, ExitFailure)
	res := decode(t, &stdout)
	assert.Equal(t, res["failed"], true)
	assert.Equal(t, res["msg"], "User Error: expected exactly one args file, got 0 arguments")
}

func TestExecute_FailureIsCategorised(t *testing.T) {
	var stdout, stderr bytes.Buffer
	path := argsFile(t, `{"value": "hello", "fail": true}`)

	code := execute([]string{"testing_echo", path}, &stdout, &stderr)
	assert.Equal(t, code, ExitFailure)
	assert.DeepEqual(t, decode(t, &stdout), map[string]any{
		"changed": false,
		"failed":  true,
		"msg":     "API Error: GET http://api/thing returned 500: boom",
	})
}

func TestExecute_ValidationFailure(t *testing.T) {
	var stdout, stderr bytes.Buffer
	path := argsFile(t, `{"colour": "blue"}`)

	code := execute([]string{"infra", "run", "testing.echo", path}, &stdout, &stderr)
	assert.Equal(t, code, ExitFailure)
	res := decode(t, &stdout)
	assert.Equal(t, res["msg"], "User Error: unsupported parameters: colour; missing required arguments: value")
}

func TestExecute_RunWithYAMLArgs(t *testing.T) {
	var stdout, stderr bytes.Buffer
	path := argsFile(t, "value: from yaml\n")

	code := execute([]string{"infra", "run", "testing_echo", path}, &stdout, &stderr)
	assert.Equal(t, code, ExitSuccess)
	assert.Equal(t, decode(t, &stdout)["echo"], "from yaml")
}

func TestExecute_RunUnknownModule(t *testing.T) {
	var stdout, stderr bytes.Buffer

	code := execute([]string{"infra", "run", "nope.nothing", "args.json"}, &stdout, &stderr)
	assert.Equal(t, code, ExitFailure)
	assert.Equal(t, decode(t, &stdout)["msg"], `User Error: unknown module "nope.nothing"`)
}

func TestExecute_MissingArgsFile(t *testing.T) {
	var stdout, stderr bytes.Buffer

	code := execute([]string{"testing_echo", filepath.Join(t.TempDir(), "missing.json")}, &stdout, &stderr)
	assert.Equal(t, code, ExitFailure)
	assert.Check(t, is.Contains(decode(t, &stdout)["msg"].(string), "User Error: unable to read args file"))
}

func TestExecute_DebugRedactsSecrets(t *testing.T) {
	var stdout, stderr bytes.Buffer
	path := argsFile(t, `{"value": "hello", "secret": "hunter2", "_ansible_verbosity": 3}`)

	code := execute([]string{"testing_echo", path}, &stdout, &stderr)
	assert.Equal(t, code, ExitSuccess)
	assert.Check(t, is.Contains(stderr.String(), "module arguments"))
	assert.Check(t, is.Contains(stderr.String(), "********"))
	assert.Check(t, !bytes.Contains(stderr.Bytes(), []byte("hunter2")))
}

func TestExecute_MetricsTextfile(t *testing.T) {
	var stdout, stderr bytes.Buffer
	path := argsFile(t, `{"value": "hello"}`)
	textfile := filepath.Join(t.TempDir(), "infra.prom")

	code := execute([]string{"testing_echo", "--metrics-textfile", textfile, path}, &stdout, &stderr)
	assert.Equal(t, code, ExitSuccess)

	data, err := os.ReadFile(textfile)
	assert.NilError(t, err)
	assert.Check(t, is.Contains(string(data), `infra_module_runs_total{module="testing.echo",outcome="changed"}`))
}

func TestExecute_List(t *testing.T) {
	var stdout, stderr bytes.Buffer

	code := execute([]string{"infra", "list"}, &stdout, &stderr)
	assert.Equal(t, code, ExitSuccess)
	assert.Check(t, is.Contains(stdout.String(), "testing.echo"))
	assert.Check(t, is.Contains(stdout.String(), "testing_echo"))
}

func TestExecute_Doc(t *testing.T) {
	var stdout, stderr bytes.Buffer

	code := execute([]string{"infra", "doc", "testing.echo"}, &stdout, &stderr)
	assert.Equal(t, code, ExitSuccess)
	assert.Check(t, is.Contains(stdout.String(), "testing.echo: Echo a value"))
	assert.Check(t, is.Contains(stdout.String(), "Value to echo"))

	code = execute([]string{"infra", "doc", "nope"}, &stdout, &stderr)
	assert.Equal(t, code, ExitFailure)
	assert.Check(t, is.Contains(stderr.String(), `unknown module "nope"`))
}

func TestExitError(t *testing.T) {
	err := error(&exitError{code: 1})
	var exit *exitError
	assert.Assert(t, errors.As(err, &exit))
	assert.Equal(t, err.Error(), "exit status 1")
}
