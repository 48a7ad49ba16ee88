package main

// particleWGSL advances the particle buffer written by the simulate pass.
// Each particle is packed as position in xy and velocity in zw.
const particleWGSL = `
@group(0) @binding(0) var<storage, read_write> particles: array<vec4<f32>>;

@compute @workgroup_size(64)
fn main(@builtin(global_invocation_id) id: vec3<u32>) {
    let p = particles[id.x];
    particles[id.x] = vec4<f32>(p.xy + p.zw * 0.016, p.zw);
}
`
