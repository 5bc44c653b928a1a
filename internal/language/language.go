package language

// Descriptor is the static metadata for one supported language.
type Descriptor struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	Ext      string `json:"ext"`
	Template string `json:"template"`
}

// Default is the language a new session starts with.
const Default = "python"

var descriptors = []Descriptor{
	{
		ID:       "python",
		Label:    "Python",
		Ext:      "py",
		Template: `print("Hello World")`,
	},
	{
		ID:    "java",
		Label: "Java",
		Ext:   "java",
		Template: "public class Main {\n" +
			"  public static void main(String[] args) {\n" +
			"    System.out.println(\"Hello World\");\n" +
			"  }\n" +
			"}",
	},
	{
		ID:    "cpp",
		Label: "C++",
		Ext:   "cpp",
		Template: "#include <iostream>\n" +
			"using namespace std;\n" +
			"int main() {\n" +
			"  cout << \"Hello World\";\n" +
			"  return 0;\n" +
			"}",
	},
}

// All returns the supported languages in display order.
func All() []Descriptor {
	out := make([]Descriptor, len(descriptors))
	copy(out, descriptors)
	return out
}

// Lookup returns the descriptor for id.
func Lookup(id string) (Descriptor, bool) {
	for _, d := range descriptors {
		if d.ID == id {
			return d, true
		}
	}
	return Descriptor{}, false
}

// SourceFile is the name the execution service sees for the submitted source.
func (d Descriptor) SourceFile() string {
	return "main." + d.Ext
}

// DownloadName is the file name offered when the source is downloaded.
func (d Descriptor) DownloadName() string {
	return "code." + d.Ext
}
