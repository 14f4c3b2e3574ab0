package categorizer

import "regexp"

type rule struct {
	category Category
	match    func(entry string) bool
}

// Order matters. Responsibility phrases often embed technology names
// ("developing React applications"), so they are checked first and
// technology last.
var defaultRules = []rule{
	{Responsibility, anyOf(responsibilityPatterns)},
	{Skill, anyOf(skillPatterns)},
	{Hardware, hardwareMatch},
	{Tool, anyOf(toolPatterns)},
	{Technology, anyOf(technologyPatterns)},
}

func anyOf(patterns []*regexp.Regexp) func(string) bool {
	return func(s string) bool {
		for _, p := range patterns {
			if p.MatchString(s) {
				return true
			}
		}
		return false
	}
}

var responsibilityPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b(ensuring|providing|creating|developing|implementing|maintaining|coordinating|managing|optimizing|optimising|debugging|testing|deploying|mentoring|training|leading|collaborating|operating|designing|building|integrating|supervising|overseeing|delivering|conducting|documenting|troubleshooting|configuring|monitoring|reviewing|architecting|prototyping|installing)\b`),
	regexp.MustCompile(`^(develop|implement|maintain|coordinate|manage|optimize|debug|test|deploy|mentor|train|lead|collaborate|operate|design|build|integrate|oversee|deliver|install)\s+\w+`),
}

var skillPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b(leadership|teamwork|team work|communication|project management|mentorship|mentoring|problem[- ]solving|critical thinking|collaboration|consulting|stakeholder management)\b`),
}

var (
	hardwarePatterns = []*regexp.Regexp{
		regexp.MustCompile(`\b(custom hardware|hardware|touch ?screens?|kiosks?|audio[- ]visual|av systems?|workstations?|gpus?|cpus?|memory|storage|projection|projectors?|projection mapping|displays?|monitors?|cameras?|microphones?|led walls?|sensors?|arduino|raspberry pi)\b`),
	}
	serverPattern = regexp.MustCompile(`\bservers?\b`)
	// software servers mention a product or protocol before the word
	softwareServerPattern = regexp.MustCompile(`\b(sql|web|api|mcp|language|dev|application|game|media|proxy|http|graphql) servers?\b`)
)

var hardwareVocabulary = anyOf(hardwarePatterns)

func hardwareMatch(s string) bool {
	if hardwareVocabulary(s) {
		return true
	}
	return serverPattern.MatchString(s) && !softwareServerPattern.MatchString(s)
}

var toolPatterns = []*regexp.Regexp{
	// design and video
	regexp.MustCompile(`\b(figma|sketch|adobe|photoshop|illustrator|after effects|premiere|indesign|lightroom|xd|canva|davinci resolve|final cut|obs)\b`),
	// office and communication
	regexp.MustCompile(`\b(slack|jira|confluence|notion|trello|asana|microsoft office|excel|powerpoint|keynote|google workspace|microsoft teams|zoom|miro)\b`),
	// 3d content
	regexp.MustCompile(`\b(blender|maya|3ds max|cinema 4d|houdini|zbrush|substance painter|substance designer|substance)\b`),
	// editors and api testing
	regexp.MustCompile(`\b(vs ?code|visual studio code|visual studio|intellij|xcode|android studio|eclipse|vim|neovim|postman|insomnia|swagger)\b`),
}

var technologyPatterns = []*regexp.Regexp{
	// languages
	regexp.MustCompile(`\b(python|javascript|typescript|java|golang|rust|ruby|php|swift|kotlin|scala|dart|lua|perl|haskell|elixir|html5?|css3?|sass|scss|sql|bash|glsl|hlsl)\b`),
	regexp.MustCompile(`^go$|^c$|^r$|(^|[^a-z])(c\+\+|c#|f#)`),
	// web and mobile frameworks
	regexp.MustCompile(`\b(react|react native|vue|vue\.js|angular|svelte|next\.?js|nuxt|node\.?js|express|django|flask|fastapi|spring|rails|laravel|flutter|swiftui|jquery|tailwind|bootstrap|redux|graphql|rest|electron)\b`),
	regexp.MustCompile(`\.net\b`),
	// databases
	regexp.MustCompile(`\b(postgres|postgresql|mysql|sqlite|mongodb|mongo|redis|elasticsearch|dynamodb|firebase|firestore|supabase|cassandra|neo4j)\b`),
	// cloud
	regexp.MustCompile(`\b(aws|amazon web services|azure|gcp|google cloud|heroku|vercel|netlify|digitalocean|cloudflare)\b`),
	// version control, package and build
	regexp.MustCompile(`\b(git|github|gitlab|bitbucket|svn|npm|yarn|pnpm|pip|webpack|vite|babel|gradle|maven|cmake)\b`),
	// testing
	regexp.MustCompile(`\b(jest|mocha|cypress|playwright|selenium|pytest|junit|vitest)\b`),
	// machine learning
	regexp.MustCompile(`\b(tensorflow|pytorch|keras|scikit-learn|sklearn|pandas|numpy|opencv|hugging ?face|langchain|openai|llms?|machine learning|deep learning|computer vision|nlp|gpt)\b`),
	// real-time graphics
	regexp.MustCompile(`\b(unity|unreal|unreal engine|godot|touchdesigner|openframeworks|three\.js|webgl|webgpu|opengl|vulkan|directx|shaders?|notch)\b`),
	// containers and infrastructure
	regexp.MustCompile(`\b(docker|kubernetes|k8s|helm|terraform|ansible|jenkins|github actions|ci/cd)\b`),
	// domain specific
	regexp.MustCompile(`\b(webrtc|websockets?|mqtt|osc|midi|dmx|ndi|arkit|arcore|vr|ar|xr|mcp)\b`),
}
