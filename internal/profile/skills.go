package profile

// SkillVocabulary is the skill taxonomy scanned for during resume
// extraction and job description parsing. Multi-word entries match when
// all their tokens appear.
var SkillVocabulary = []string{
	"python", "java", "javascript", "typescript", "golang", "rust",
	"c++", "c#", "ruby", "php", "scala", "kotlin", "swift",
	"sql", "postgresql", "mysql", "mongodb", "redis", "elasticsearch",
	"aws", "azure", "gcp", "docker", "kubernetes", "terraform", "ansible",
	"react", "angular", "vue", "node", "django", "flask", "spring",
	"fastapi", "graphql", "rest", "grpc", "kafka", "rabbitmq",
	"selenium", "cypress", "playwright", "junit", "pytest",
	"jenkins", "gitlab", "github actions", "ci/cd", "git", "linux",
	"machine learning", "deep learning", "tensorflow", "pytorch",
	"pandas", "numpy", "spark", "airflow", "tableau", "power bi",
	"agile", "scrum", "jira",
}
